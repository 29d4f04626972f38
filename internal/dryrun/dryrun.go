// Package dryrun lets mutating commands describe the storage request they
// would send instead of sending it.
package dryrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

type contextKey struct{}

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(contextKey{}).(bool); ok {
		return v
	}
	return false
}

// Field is one request parameter shown in a preview, kept in the order the
// command added it.
type Field struct {
	Name  string
	Value any
}

// Preview describes a request that was not sent.
type Preview struct {
	Operation string // API operation, e.g. "DeleteFolder"
	Method    string
	Target    string // storage path or template the request acts on
	Fields    []Field
	Warnings  []string
}

// New starts a preview for an operation on target.
func New(operation, method, target string) *Preview {
	return &Preview{Operation: operation, Method: method, Target: target}
}

// With adds a parameter; empty strings are skipped like the API client
// skips empty query parameters.
func (p *Preview) With(name string, value any) *Preview {
	if s, ok := value.(string); ok && s == "" {
		return p
	}
	p.Fields = append(p.Fields, Field{Name: name, Value: value})
	return p
}

// Warn attaches a warning shown under the parameters.
func (p *Preview) Warn(format string, args ...any) *Preview {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
	return p
}

// MarshalJSON renders the preview with parameters as an object.
func (p *Preview) MarshalJSON() ([]byte, error) {
	params := make(map[string]any, len(p.Fields))
	for _, f := range p.Fields {
		params[f.Name] = f.Value
	}
	return json.Marshal(struct {
		DryRun    bool           `json:"dry_run"`
		Operation string         `json:"operation"`
		Method    string         `json:"method"`
		Target    string         `json:"target"`
		Params    map[string]any `json:"params,omitempty"`
		Warnings  []string       `json:"warnings,omitempty"`
	}{true, p.Operation, p.Method, p.Target, params, p.Warnings})
}

// Write outputs the preview as text.
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] %s %s (%s)\n", p.Operation, p.Target, p.Method)
	for _, f := range p.Fields {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", f.Name, f.Value)
	}
	for _, warning := range p.Warnings {
		_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
	}
	_, _ = fmt.Fprintln(w, "No changes made (dry-run mode)")
}

package outfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"text/template"
)

type templateKey struct{}

// WithTemplate adds a template string to the context
func WithTemplate(ctx context.Context, tmpl string) context.Context {
	return context.WithValue(ctx, templateKey{}, tmpl)
}

// GetTemplate retrieves the template string from context
func GetTemplate(ctx context.Context) string {
	if tmpl, ok := ctx.Value(templateKey{}).(string); ok {
		return tmpl
	}
	return ""
}

// WriteTemplate renders v with a Go text/template. Besides the builtins,
// templates get "json" and "bytes" (human-readable sizes).
func WriteTemplate(w io.Writer, v any, tmpl string) error {
	funcs := template.FuncMap{
		"json": func(val any) (string, error) {
			buf := &bytes.Buffer{}
			enc := json.NewEncoder(buf)
			enc.SetIndent("", "  ")
			if err := enc.Encode(val); err != nil {
				return "", err
			}
			return buf.String(), nil
		},
		"bytes": func(val any) string {
			switch n := val.(type) {
			case float64:
				return HumanSize(int64(n))
			case int64:
				return HumanSize(n)
			case int:
				return HumanSize(int64(n))
			default:
				return fmt.Sprint(val)
			}
		},
	}

	t, err := template.New("output").Funcs(funcs).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return templateError("invalid template", err)
	}
	if err := t.Execute(w, v); err != nil {
		return templateError("template execution error", err)
	}
	return nil
}

var templateLocation = regexp.MustCompile(`:(\d+):(\d+):`)

func templateError(kind string, err error) error {
	if m := templateLocation.FindStringSubmatch(err.Error()); len(m) == 3 {
		return fmt.Errorf("%s at line %s, column %s: %w", kind, m[1], m[2], err)
	}
	return fmt.Errorf("%s: %w", kind, err)
}

// HumanSize formats a byte count using binary units.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

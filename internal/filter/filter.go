// Package filter applies jq expressions to command output.
package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// listKey is the field storage listings wrap their entries in.
const listKey = "value"

// NormalizeExpression fixes shell-escaped operators in jq expressions.
// Zsh escapes ! to \! even in single quotes, breaking operators like !=.
func NormalizeExpression(expr string) string {
	return strings.ReplaceAll(strings.TrimSpace(expr), `\!`, `!`)
}

// Apply applies a jq expression to data. A query written against a bare
// array (".[]") also works on a {"value": [...]} listing.
func Apply(data any, expression string) (any, error) {
	expression = NormalizeExpression(expression)
	if expression == "" {
		return data, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	results, err := runQuery(query, data)
	if err != nil {
		if entries, ok := listingFallback(data, expression, err); ok {
			if retry, retryErr := runQuery(query, entries); retryErr == nil {
				results, err = retry, nil
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return collapse(results), nil
}

// ApplyToJSON applies a filter to JSON bytes and returns pretty-printed JSON.
func ApplyToJSON(jsonData []byte, expression string) ([]byte, error) {
	if NormalizeExpression(expression) == "" {
		return jsonData, nil
	}
	result, err := ApplyFromJSON(jsonData, expression)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(result, "", "  ")
}

// ApplyFromJSON decodes jsonData and applies the filter, returning the
// result for the caller to format.
func ApplyFromJSON(jsonData []byte, expression string) (any, error) {
	var data any
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return Apply(data, expression)
}

func runQuery(query *gojq.Query, data any) ([]any, error) {
	iter := query.Run(data)

	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("filter error: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

func collapse(results []any) any {
	if len(results) == 1 {
		return results[0]
	}
	return results
}

func listingFallback(data any, expression string, runErr error) (any, bool) {
	if !looksLikeRootArrayQuery(expression) {
		return nil, false
	}
	msg := runErr.Error()
	if !strings.Contains(msg, "expected an object but got: array") &&
		!strings.Contains(msg, "expected an array but got: object") {
		return nil, false
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil, false
	}
	entries, ok := m[listKey].([]any)
	if !ok {
		return nil, false
	}
	return entries, true
}

func looksLikeRootArrayQuery(expression string) bool {
	expr := strings.TrimSpace(expression)
	for _, prefix := range []string{".[]", "[.[]", "(.[]", ".[0]", "map("} {
		if strings.HasPrefix(expr, prefix) {
			return true
		}
	}
	return false
}

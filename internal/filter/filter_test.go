package filter

import (
	"bytes"
	"testing"
)

func listing() map[string]any {
	return map[string]any{
		"value": []any{
			map[string]any{"name": "Invoice.docx", "isFolder": false, "size": float64(2048)},
			map[string]any{"name": "templates", "isFolder": true, "size": float64(0)},
		},
	}
}

func TestApply_EmptyExpression(t *testing.T) {
	data := map[string]any{"name": "test"}
	result, err := Apply(data, "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(map[string]any)["name"] != "test" {
		t.Error("empty expression should return data unchanged")
	}
}

func TestApply_SelectField(t *testing.T) {
	result, err := Apply(map[string]any{"exists": true}, ".exists")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != true {
		t.Errorf("expected true, got %v", result)
	}
}

func TestApply_MultipleResults(t *testing.T) {
	result, err := Apply(listing(), ".value[].name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names, ok := result.([]any)
	if !ok || len(names) != 2 || names[0] != "Invoice.docx" {
		t.Errorf("result = %#v", result)
	}
}

func TestApply_ListingFallback(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want any
	}{
		{"iterate", `.[] | select(.isFolder) | .name`, "templates"},
		{"index", `.[0].name`, "Invoice.docx"},
		{"map", `map(.size) | add`, float64(2048)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(listing(), tt.expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Apply(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestApply_NoFallbackForOtherErrors(t *testing.T) {
	_, err := Apply(map[string]any{"name": "x"}, `.[] | .size`)
	if err == nil {
		t.Error("expected an error when reading a field of a string")
	}
}

func TestApply_ShellEscapedNegation(t *testing.T) {
	result, err := Apply(listing(), `[.value[] | select(.isFolder \!= true) | .name]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := result.([]any)
	if len(names) != 1 || names[0] != "Invoice.docx" {
		t.Errorf("result = %#v", result)
	}
}

func TestApply_InvalidExpression(t *testing.T) {
	if _, err := Apply(map[string]any{}, "invalid[[["); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestApplyToJSON(t *testing.T) {
	raw := []byte(`{"usedSize": 10, "totalSize": 100}`)

	same, err := ApplyToJSON(raw, "")
	if err != nil || !bytes.Equal(same, raw) {
		t.Errorf("empty expression should return input, got %s (%v)", same, err)
	}

	out, err := ApplyToJSON(raw, "{used: .usedSize}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(out, []byte(`"used": 10`)) {
		t.Errorf("output = %s", out)
	}
}

func TestApplyFromJSON_InvalidJSON(t *testing.T) {
	if _, err := ApplyFromJSON([]byte("{"), ".x"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

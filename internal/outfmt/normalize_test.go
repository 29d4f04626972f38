package outfmt

import (
	"reflect"
	"testing"
)

type entry struct {
	Name string `json:"name"`
}

func TestNormalize(t *testing.T) {
	var nilSlice []entry
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"object", map[string]any{"a": 1}, map[string]any{"a": 1}},
		{"bytes", []byte("raw"), []byte("raw")},
		{"slice", []entry{{"x"}}, map[string]any{"value": []entry{{"x"}}}},
		{"nil slice", nilSlice, map[string]any{"value": []any{}}},
		{"pointer to slice", &[]entry{{"y"}}, map[string]any{"value": []entry{{"y"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalize() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestToGeneric(t *testing.T) {
	got, err := toGeneric(struct {
		Size int64 `json:"size"`
	}{Size: 3})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"size": float64(3)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("toGeneric() = %#v", got)
	}
}

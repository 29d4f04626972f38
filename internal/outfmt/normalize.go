package outfmt

import (
	"encoding/json"
	"reflect"
)

// listKey matches the envelope the storage API uses for listings.
const listKey = "value"

// normalize wraps bare slices as {"value": [...]} so every listing has the
// same shape as the API's own and a nil slice prints as [].
func normalize(v any) any {
	if v == nil {
		return v
	}
	switch v.(type) {
	case []byte, json.RawMessage:
		return v
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return v
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return v
	}
	entries := rv.Interface()
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		entries = []any{}
	}
	return map[string]any{listKey: entries}
}

// toGeneric round-trips v through JSON so jq and JSONL see plain maps.
func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

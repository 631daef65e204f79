package models

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
)

// marshalJSON encodes values that may have been decoded from BSON. Nested
// bson.D values are converted to maps first so that they encode as objects.
func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(NormalizeBSON(v))
}

// NormalizeBSON converts bson.D/bson.A/bson.M trees into plain maps and
// slices so that opaque values can be served as JSON.
func NormalizeBSON(v any) any {
	switch t := v.(type) {
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = NormalizeBSON(e.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = NormalizeBSON(e)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = NormalizeBSON(e)
		}
		return m
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = NormalizeBSON(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = NormalizeBSON(e)
		}
		return out
	default:
		return v
	}
}

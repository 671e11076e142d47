package portal

import (
	"encoding/json"
	"strings"
)

// MaxDecodeDepth bounds how far DeepDecode descends into nested values
// and repeatedly encoded strings.
const MaxDecodeDepth = 32

// DeepDecode decodes JSON-encoded strings found anywhere in v, repeating
// until a value stops being decodable. The portal double and triple
// encodes some fields. A raw string is only a candidate when it looks like
// a JSON object, array or string literal, so ids such as "12345" stay
// strings. Once a string layer has been unwrapped, its content may be any
// JSON value, so "\"5\"" decodes to 5. Maps and slices are decoded in place.
func DeepDecode(v any) any {
	return deepDecode(v, MaxDecodeDepth, false)
}

func deepDecode(v any, depth int, unwrapped bool) any {
	if depth <= 0 {
		return v
	}
	switch v := v.(type) {
	case string:
		decoded, ok := decodeString(v, unwrapped)
		if !ok {
			return v
		}
		return deepDecode(decoded, depth-1, true)
	case map[string]any:
		for k, e := range v {
			v[k] = deepDecode(e, depth-1, false)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = deepDecode(e, depth-1, false)
		}
		return v
	default:
		return v
	}
}

func decodeString(s string, anyValue bool) (any, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil, false
	}
	switch t[0] {
	case '{', '[', '"':
	default:
		if !anyValue {
			return nil, false
		}
	}
	var out any
	if err := json.Unmarshal([]byte(t), &out); err != nil {
		return nil, false
	}
	return out, true
}

// IsEmpty reports whether a decoded payload carries nothing, which is
// how the portal answers a valid-looking request for a missing section.
func IsEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case float64:
		return v == 0
	default:
		return false
	}
}

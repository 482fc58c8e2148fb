package fieldset

import "encoding/json"

// DecodeItems normalizes a stored or submitted group value into a list of
// per-item maps. It accepts either a structured list or a string-encoded
// JSON payload; anything that fails to decode is treated as empty. This
// forgiving fallback is deliberate: legacy or partial data must render as an
// empty group, never as an error surfaced to the user.
//
// Top-level entries that are not themselves structured maps are dropped.
// Order is preserved; nothing is re-sorted or deduplicated.
func DecodeItems(raw any) []map[string]any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []map[string]any:
		items := make([]map[string]any, 0, len(v))
		for _, entry := range v {
			if entry != nil {
				items = append(items, entry)
			}
		}
		return items
	case []any:
		var items []map[string]any
		for _, entry := range v {
			if m, ok := entry.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items
	case string:
		if v == "" {
			return nil
		}
		var decoded []any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return nil
		}
		return DecodeItems(decoded)
	default:
		return nil
	}
}

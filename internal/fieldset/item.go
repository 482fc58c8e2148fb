package fieldset

// Item is an immutable snapshot of one row in a repeatable group. It is
// created fresh on every request, either from persisted data (Renderer) or
// from submitted data (RequestProcessor), and discarded when the request
// ends.
type Item struct {
	// Ordinal is the zero-based position within the current list. It is
	// purely positional and changes when siblings are reordered or removed.
	Ordinal int

	// StableID is the per-item identifier that survives reordering and
	// deletion of siblings. Always >= 1.
	StableID int

	// Data holds the item's raw values, including the normalized `_id`.
	Data map[string]any

	// Fields are the bound field instances for this item, in schema order.
	Fields []BoundField
}

// Value returns the raw value stored under the given child key.
func (it Item) Value(childKey string) any {
	return it.Data[childKey]
}

// Field returns the bound instance for the given child key, if present.
func (it Item) Field(childKey string) (BoundField, bool) {
	for _, f := range it.Fields {
		if f.ChildKey == childKey {
			return f, true
		}
	}
	return BoundField{}, false
}

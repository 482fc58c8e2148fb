package fieldset

import (
	"fmt"

	"github.com/panelforge/panelforge/internal/registry"
	"github.com/panelforge/panelforge/internal/store"
)

// Placeholder tokens used by template fields for client-side row
// duplication. They stand in for the ordinal and the stable identifier.
const (
	PlaceholderOrdinal = "__INDEX__"
	PlaceholderItem    = "__ITEM__"
)

// Leaf is the schema-side definition of one child field, shared by every
// item and never mutated per item.
type Leaf struct {
	Key     string
	Kind    registry.Kind
	Rules   string
	Label   string
	Default any
}

// SchemaEntry is one entry of a fieldset schema: a leaf field or a
// grid-arranged group of leaves. A repeatable group cannot appear here by
// construction.
type SchemaEntry struct {
	Leaf *Leaf
	Grid *Grid
}

// Grid is a row of columns, each holding further leaves.
type Grid struct {
	Columns []Column
}

// Column is one cell of a grid row.
type Column struct {
	Span   int
	Leaves []Leaf
}

// BoundField is a clone of a schema leaf bound to one item: its name has
// been rewritten to embed the item's position, and attachment-bearing
// fields additionally carry the item's stable collection name.
type BoundField struct {
	// Name is the rewritten input path, `group[ordinal][childKey]`.
	Name string

	// ChildKey is the original (pre-rewrite) schema key.
	ChildKey string

	Kind  registry.Kind
	Label string
	Value any

	// Collection is the stable attachment-collection name,
	// `group_stableID_childKey`. Only set for attachment-bearing kinds.
	// It is keyed by the stable identifier, not the ordinal, so reordering
	// rows never orphans their attachments.
	Collection string

	// Attachments holds the existing attachments of the collection, resolved
	// when the parent record already exists, so they render immediately.
	Attachments []store.Attachment
}

// bind creates the initial bound instance of a leaf, before rebinding.
func (l Leaf) bind() BoundField {
	return BoundField{
		Name:     l.Key,
		ChildKey: l.Key,
		Kind:     l.Kind,
		Label:    l.Label,
	}
}

// Rebind returns a copy of the field bound under the given group with the
// given ordinal and item tokens. It is a pure function; the receiver is not
// modified. The tokens are strings so template placeholders rebind through
// the same code path as concrete items.
func (f BoundField) Rebind(group, ordinalToken, itemToken string) BoundField {
	f.Name = fmt.Sprintf("%s[%s][%s]", group, ordinalToken, f.ChildKey)
	if f.Kind.Media {
		f.Collection = CollectionName(group, itemToken, f.ChildKey)
	}
	return f
}

// CollectionName computes the attachment-collection name for one child field
// of one item. It depends only on the group key, the item token (stable
// identifier or placeholder), and the child key.
func CollectionName(group, itemToken, childKey string) string {
	return fmt.Sprintf("%s_%s_%s", group, itemToken, childKey)
}

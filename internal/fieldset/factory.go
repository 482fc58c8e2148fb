package fieldset

import (
	"context"
	"strconv"

	"github.com/panelforge/panelforge/internal/ctxlog"
	"github.com/panelforge/panelforge/internal/dataview"
	"github.com/panelforge/panelforge/internal/store"
)

// stableIDKey is the reserved item attribute carrying the stable identifier
// through the wire payload.
const stableIDKey = "_id"

// ItemFactory clones the shared child-field schema once per item, rebinding
// each clone to a path that embeds the item's ordinal and stable identifier.
type ItemFactory struct {
	group    string
	schema   []SchemaEntry
	resolver store.AttachmentStore
}

// NewItemFactory returns a factory for the given group key and schema.
// resolver may be nil; existing attachments are then not resolved during
// rendering.
func NewItemFactory(group string, schema []SchemaEntry, resolver store.AttachmentStore) *ItemFactory {
	return &ItemFactory{group: group, schema: schema, resolver: resolver}
}

// MakeFromData builds one Item from its raw data. A malformed schema is a
// programming error caught at definition-load time; nothing here can fail
// recoverably.
func (f *ItemFactory) MakeFromData(ctx context.Context, ordinal int, itemData map[string]any, parent store.Record) Item {
	stableID := resolveStableID(itemData, ordinal)
	view := dataview.OfMap(itemData)

	leaves := leavesOf(f.schema)
	fields := make([]BoundField, 0, len(leaves))
	for _, leaf := range leaves {
		bound := leaf.bind()
		if view.Has(leaf.Key) {
			bound.Value = view.Get(leaf.Key)
		} else if leaf.Default != nil {
			bound.Value = leaf.Default
		}

		bound = bound.Rebind(f.group, strconv.Itoa(ordinal), strconv.Itoa(stableID))

		if leaf.Kind.Media && parent != nil && f.resolver != nil {
			attachments, err := f.resolver.ListByCollection(ctx, parent.ID(), bound.Collection)
			if err != nil {
				// Rendering must not fail on a metadata lookup; the field
				// simply renders without its existing attachments.
				ctxlog.FromContext(ctx).Warn("Failed to resolve existing attachments.",
					"collection", bound.Collection, "error", err)
			}
			bound.Attachments = attachments
		}

		fields = append(fields, bound)
	}

	return Item{
		Ordinal:  ordinal,
		StableID: stableID,
		Data:     itemData,
		Fields:   fields,
	}
}

// MakeTemplateFields clones the schema once with placeholder tokens instead
// of real numbers, for client-side row duplication. The output never
// contains a concrete ordinal or identifier and is identical across calls.
func (f *ItemFactory) MakeTemplateFields() []BoundField {
	leaves := leavesOf(f.schema)
	fields := make([]BoundField, 0, len(leaves))
	for _, leaf := range leaves {
		bound := leaf.bind()
		if leaf.Default != nil {
			bound.Value = leaf.Default
		}
		fields = append(fields, bound.Rebind(f.group, PlaceholderOrdinal, PlaceholderItem))
	}
	return fields
}

// resolveStableID reads the item's identifier, coercing whatever the
// transport delivered; items lacking one are assigned ordinal+1 so every
// rendered item has a positive identifier even before first save.
func resolveStableID(itemData map[string]any, ordinal int) int {
	if raw, ok := itemData[stableIDKey]; ok {
		if id, ok := toInt(raw); ok && id > 0 {
			return id
		}
	}
	return ordinal + 1
}

// leavesOf flattens a schema into its leaf fields in traversal order.
func leavesOf(schema []SchemaEntry) []Leaf {
	var leaves []Leaf
	for _, entry := range schema {
		switch {
		case entry.Leaf != nil:
			leaves = append(leaves, *entry.Leaf)
		case entry.Grid != nil:
			for _, column := range entry.Grid.Columns {
				leaves = append(leaves, column.Leaves...)
			}
		}
	}
	return leaves
}

// toInt coerces the loose numeric representations a transport layer may
// deliver (JSON numbers, strings) into an int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

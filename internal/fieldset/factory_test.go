package fieldset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelforge/panelforge/internal/store"
)

func TestResolveStableID(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		data    map[string]any
		ordinal int
		want    int
	}{
		{name: "explicit id wins", data: map[string]any{"_id": 7}, ordinal: 0, want: 7},
		{name: "string id is coerced", data: map[string]any{"_id": "12"}, ordinal: 0, want: 12},
		{name: "json number id is coerced", data: map[string]any{"_id": float64(3)}, ordinal: 5, want: 3},
		{name: "missing id falls back to ordinal+1", data: map[string]any{}, ordinal: 2, want: 3},
		{name: "zero id falls back", data: map[string]any{"_id": 0}, ordinal: 0, want: 1},
		{name: "negative id falls back", data: map[string]any{"_id": -4}, ordinal: 1, want: 2},
		{name: "garbage id falls back", data: map[string]any{"_id": "abc"}, ordinal: 4, want: 5},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, resolveStableID(tc.data, tc.ordinal))
		})
	}
}

func TestMakeFromData_BindsValuesAndDefaults(t *testing.T) {
	t.Parallel()

	title := textLeaf("title")
	subtitle := textLeaf("subtitle")
	subtitle.Default = "untitled"
	schema := []SchemaEntry{leafEntry(title), leafEntry(subtitle)}

	factory := NewItemFactory("slides", schema, nil)
	item := factory.MakeFromData(context.Background(), 1, map[string]any{"_id": 9, "title": "hello"}, nil)

	require.Equal(t, 1, item.Ordinal)
	require.Equal(t, 9, item.StableID)

	titleField, ok := item.Field("title")
	require.True(t, ok)
	assert.Equal(t, "slides[1][title]", titleField.Name)
	assert.Equal(t, "hello", titleField.Value)

	subtitleField, ok := item.Field("subtitle")
	require.True(t, ok)
	assert.Equal(t, "untitled", subtitleField.Value, "missing value falls back to the declared default")
}

func TestMakeFromData_ResolvesExistingAttachments(t *testing.T) {
	t.Parallel()

	media := newFakeMediaStore()
	media.attachments["gallery_4_photo"] = []store.Attachment{
		{ID: 21, Collection: "gallery_4_photo", FileName: "a.jpg", Position: 1},
	}

	factory := NewItemFactory("gallery", []SchemaEntry{leafEntry(imageLeaf("photo"))}, media)
	item := factory.MakeFromData(context.Background(), 0, map[string]any{"_id": 4}, newFakeRecord(1))

	photo, ok := item.Field("photo")
	require.True(t, ok)
	require.Equal(t, "gallery_4_photo", photo.Collection)
	require.Len(t, photo.Attachments, 1)
	assert.Equal(t, "a.jpg", photo.Attachments[0].FileName)
}

func TestMakeFromData_NoParentSkipsAttachmentLookup(t *testing.T) {
	t.Parallel()

	media := newFakeMediaStore()
	factory := NewItemFactory("gallery", []SchemaEntry{leafEntry(imageLeaf("photo"))}, media)

	item := factory.MakeFromData(context.Background(), 0, map[string]any{}, nil)

	photo, ok := item.Field("photo")
	require.True(t, ok)
	assert.Empty(t, photo.Attachments)
	assert.Equal(t, "gallery_1_photo", photo.Collection, "unsaved rows still get a deterministic collection")
}

func TestMakeTemplateFields_UsesPlaceholders(t *testing.T) {
	t.Parallel()

	schema := []SchemaEntry{leafEntry(textLeaf("title")), leafEntry(imageLeaf("photo"))}
	factory := NewItemFactory("gallery", schema, nil)

	fields := factory.MakeTemplateFields()
	require.Len(t, fields, 2)

	assert.Equal(t, "gallery[__INDEX__][title]", fields[0].Name)
	assert.Equal(t, "gallery[__INDEX__][photo]", fields[1].Name)
	assert.Equal(t, "gallery___ITEM___photo", fields[1].Collection)

	// Stable across calls: the template never leaks a concrete identifier.
	assert.Equal(t, fields, factory.MakeTemplateFields())
}

func TestMakeFromData_GridLeavesAreFlattened(t *testing.T) {
	t.Parallel()

	schema := []SchemaEntry{
		leafEntry(textLeaf("title")),
		{Grid: &Grid{Columns: []Column{
			{Span: 6, Leaves: []Leaf{textLeaf("left")}},
			{Span: 6, Leaves: []Leaf{textLeaf("right")}},
		}}},
	}
	factory := NewItemFactory("rows", schema, nil)

	item := factory.MakeFromData(context.Background(), 0, map[string]any{"left": "L"}, nil)
	require.Len(t, item.Fields, 3)
	assert.Equal(t, "rows[0][title]", item.Fields[0].Name)
	assert.Equal(t, "rows[0][left]", item.Fields[1].Name)
	assert.Equal(t, "rows[0][right]", item.Fields[2].Name)
}

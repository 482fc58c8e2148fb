package fieldset

import (
	"context"
	"fmt"

	"github.com/panelforge/panelforge/internal/dataview"
	"github.com/panelforge/panelforge/internal/store"
)

// Fieldset is the repeatable field-group facade exposed to the form-building
// layer. It owns the immutable child-field schema and the group
// configuration, and orchestrates the renderer, request processor, item
// factory and media manager. A Fieldset holds no request state; it is safe
// to share across requests.
type Fieldset struct {
	key    string
	schema []SchemaEntry

	minItems       int
	maxItems       int
	sortable       bool
	collapsible    bool
	headTitle      string
	headPreview    string
	addButtonLabel string
	preserveEmpty  bool

	media store.AttachmentStore
}

// Option configures a Fieldset at construction time.
type Option func(*Fieldset)

// WithMinItems requires at least n meaningful rows after filtering.
func WithMinItems(n int) Option { return func(fs *Fieldset) { fs.minItems = n } }

// WithMaxItems allows at most n rows.
func WithMaxItems(n int) Option { return func(fs *Fieldset) { fs.maxItems = n } }

// WithSortable lets the user reorder rows interactively.
func WithSortable(v bool) Option { return func(fs *Fieldset) { fs.sortable = v } }

// WithCollapsible lets rows collapse to their head line.
func WithCollapsible(v bool) Option { return func(fs *Fieldset) { fs.collapsible = v } }

// WithHeadTitle binds a child key as each row's collapsed title.
func WithHeadTitle(childKey string) Option { return func(fs *Fieldset) { fs.headTitle = childKey } }

// WithHeadPreview binds a child key as each row's collapsed preview.
func WithHeadPreview(childKey string) Option { return func(fs *Fieldset) { fs.headPreview = childKey } }

// WithAddButtonLabel overrides the label of the add-row button.
func WithAddButtonLabel(text string) Option {
	return func(fs *Fieldset) { fs.addButtonLabel = text }
}

// WithPreserveEmptyItems keeps submitted rows that carry no meaningful data
// instead of silently dropping them.
func WithPreserveEmptyItems(v bool) Option { return func(fs *Fieldset) { fs.preserveEmpty = v } }

// WithMediaStore wires the attachment store used to resolve existing
// attachments during rendering and meaningfulness checks.
func WithMediaStore(media store.AttachmentStore) Option {
	return func(fs *Fieldset) { fs.media = media }
}

// New builds a Fieldset for the given group key and child schema. An empty
// schema is a programming error.
func New(key string, schema []SchemaEntry, opts ...Option) (*Fieldset, error) {
	if key == "" {
		return nil, fmt.Errorf("fieldset: group key must not be empty")
	}
	if len(leavesOf(schema)) == 0 {
		return nil, fmt.Errorf("fieldset %q: schema declares no leaf fields", key)
	}

	fs := &Fieldset{key: key, schema: schema}
	for _, opt := range opts {
		opt(fs)
	}
	if fs.minItems > 0 && fs.maxItems > 0 && fs.minItems > fs.maxItems {
		return nil, fmt.Errorf("fieldset %q: min_items %d exceeds max_items %d", key, fs.minItems, fs.maxItems)
	}
	return fs, nil
}

// Key returns the group's attribute key.
func (fs *Fieldset) Key() string { return fs.key }

// MinItems returns the minimum meaningful-row count, 0 for none.
func (fs *Fieldset) MinItems() int { return fs.minItems }

// MaxItems returns the maximum row count, 0 for unlimited.
func (fs *Fieldset) MaxItems() int { return fs.maxItems }

// Sortable reports whether rows may be reordered interactively.
func (fs *Fieldset) Sortable() bool { return fs.sortable }

// Collapsible reports whether rows may collapse to their head line.
func (fs *Fieldset) Collapsible() bool { return fs.collapsible }

// HeadTitle returns the child key bound as each row's collapsed title.
func (fs *Fieldset) HeadTitle() string { return fs.headTitle }

// HeadPreview returns the child key bound as each row's collapsed preview.
func (fs *Fieldset) HeadPreview() string { return fs.headPreview }

// AddButtonLabel returns the add-row button label, "" for the default.
func (fs *Fieldset) AddButtonLabel() string { return fs.addButtonLabel }

// PreservesEmptyItems reports whether empty rows survive processing.
func (fs *Fieldset) PreservesEmptyItems() bool { return fs.preserveEmpty }

// Schema returns the child schema entries in declaration order.
func (fs *Fieldset) Schema() []SchemaEntry { return fs.schema }

// leaves flattens the schema into its leaf fields in traversal order.
func (fs *Fieldset) leaves() []Leaf { return leavesOf(fs.schema) }

// Render produces the items and template fields for display. src is the
// data source (record attributes or a prior submission); parent is the
// persisted record, or nil before first save.
func (fs *Fieldset) Render(ctx context.Context, src *dataview.View, parent store.Record) RenderResult {
	factory := NewItemFactory(fs.key, fs.schema, fs.media)
	return NewRenderer(fs.key, factory).Render(ctx, src, parent)
}

// Process normalizes a submitted payload into kept rows plus deferred
// attachment actions.
func (fs *Fieldset) Process(ctx context.Context, payload map[string]any, meta Meta, parent store.Record) ProcessResult {
	manager := NewMediaManager(fs.media)
	return NewRequestProcessor(fs, manager).Process(ctx, payload, meta, parent)
}

// TemplateFields returns the placeholder-keyed field clones used for
// client-side row duplication.
func (fs *Fieldset) TemplateFields() []BoundField {
	return NewItemFactory(fs.key, fs.schema, fs.media).MakeTemplateFields()
}

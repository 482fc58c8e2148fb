package fieldset

import (
	"context"

	"github.com/panelforge/panelforge/internal/ctxlog"
	"github.com/panelforge/panelforge/internal/dataview"
	"github.com/panelforge/panelforge/internal/store"
)

// RenderResult is what the markup layer consumes: one Item per stored row
// plus one extra template set of fields (placeholder-keyed) used for
// client-side duplication when the user adds a new row interactively.
type RenderResult struct {
	Items          []Item
	TemplateFields []BoundField
}

// Renderer turns persisted or previously-submitted data into renderable
// items. It is request-scoped and stateless between calls.
type Renderer struct {
	group   string
	factory *ItemFactory
}

// NewRenderer returns a Renderer for the given group backed by the factory.
func NewRenderer(group string, factory *ItemFactory) *Renderer {
	return &Renderer{group: group, factory: factory}
}

// Render reads the group's raw stored value from the data source, decodes it
// tolerantly, and produces one Item per surviving entry in original order.
// parent may be nil for a record that has never been persisted.
func (r *Renderer) Render(ctx context.Context, src *dataview.View, parent store.Record) RenderResult {
	raw := src.Get(r.group)
	rows := DecodeItems(raw)

	ctxlog.FromContext(ctx).Debug("Rendering fieldset items.",
		"group", r.group, "rows", len(rows))

	items := make([]Item, 0, len(rows))
	for ordinal, row := range rows {
		items = append(items, r.factory.MakeFromData(ctx, ordinal, row, parent))
	}

	return RenderResult{
		Items:          items,
		TemplateFields: r.factory.MakeTemplateFields(),
	}
}

// Package workflow implements the save pipeline that surrounds the
// repeatable-group engine: process every group's submitted rows, validate
// the filtered result, and either persist it atomically together with the
// queued attachment actions or hand the filtered rows back for replay.
package workflow

import (
	"context"
	"fmt"

	"github.com/panelforge/panelforge/internal/builder"
	"github.com/panelforge/panelforge/internal/ctxlog"
	"github.com/panelforge/panelforge/internal/dataview"
	"github.com/panelforge/panelforge/internal/fieldset"
	"github.com/panelforge/panelforge/internal/store"
	"github.com/panelforge/panelforge/internal/validate"
)

// SaveResult reports the outcome of one save attempt.
type SaveResult struct {
	// Record is the persisted record. Nil when validation failed.
	Record store.Record

	// Errors holds the per-path validation messages when the submission was
	// rejected. Paths index into OldInput, not the raw submission.
	Errors validate.Errors

	// OldInput is the normalized payload the validation ran against, with
	// every group replaced by its filtered rows. On failure the form is
	// re-rendered from it, so dropped rows stay dropped and error indices
	// line up with what the user sees.
	OldInput map[string]any
}

// Saved reports whether the attempt persisted a record.
func (r SaveResult) Saved() bool { return r.Record != nil }

// Workflow wires the request processors of a resource's groups to the
// validation engine and the record store.
type Workflow struct {
	records store.RecordStore
	engine  validate.Engine
}

// New returns a Workflow persisting through records and validating with
// engine.
func New(records store.RecordStore, engine validate.Engine) *Workflow {
	return &Workflow{records: records, engine: engine}
}

// Save runs the full pipeline for one submission. existing is the record
// being updated, or nil to create a new one. The returned error reports
// infrastructure failures (invalid rule set, storage errors); a rejected
// submission is not an error.
func (w *Workflow) Save(ctx context.Context, res *builder.Resource, payload map[string]any, meta fieldset.Meta, existing store.Record) (SaveResult, error) {
	logger := ctxlog.FromContext(ctx)

	normalized := make(map[string]any, len(payload))
	for k, v := range payload {
		normalized[k] = v
	}

	var actions []store.PostCommitAction
	for _, group := range res.Groups {
		processed := group.Process(ctx, payload, meta, existing)
		normalized[group.Key()] = itemsValue(processed.Items)
		for _, action := range processed.Actions {
			actions = append(actions, action)
		}
	}

	validated, verrs, err := w.engine.Validate(ctx, res.Rules(), normalized)
	if err != nil {
		return SaveResult{}, fmt.Errorf("validating %q submission: %w", res.Name, err)
	}
	if verrs.Any() {
		logger.Debug("Submission rejected.", "resource", res.Name, "error_paths", verrs.Paths())
		return SaveResult{Errors: verrs, OldInput: normalized}, nil
	}

	attrs := attrsFor(res, normalized, validated)

	var record store.Record
	if existing == nil {
		record, err = w.records.Create(ctx, res.Name, attrs, actions)
	} else {
		record, err = w.records.Update(ctx, res.Name, existing.ID(), attrs, actions)
	}
	if err != nil {
		return SaveResult{}, fmt.Errorf("persisting %q: %w", res.Name, err)
	}

	logger.Info("Record saved.", "resource", res.Name, "id", record.ID(),
		"deferred_actions", len(actions))
	return SaveResult{Record: record, OldInput: normalized}, nil
}

// Render produces the display model for every group of the resource, keyed
// by group. src is nil to render from the record's attributes; pass a prior
// submission (SaveResult.OldInput) to replay a rejected attempt.
func (w *Workflow) Render(ctx context.Context, res *builder.Resource, src map[string]any, record store.Record) map[string]fieldset.RenderResult {
	var view *dataview.View
	switch {
	case src != nil:
		view = dataview.OfMap(src)
	case record != nil:
		view = dataview.OfRecord(record)
	default:
		view = dataview.OfMap(map[string]any{})
	}

	rendered := make(map[string]fieldset.RenderResult, len(res.Groups))
	for _, group := range res.Groups {
		rendered[group.Key()] = group.Render(ctx, view, record)
	}
	return rendered
}

// attrsFor assembles the attribute map to persist: declared plain fields and
// groups only, so stray submission keys never reach storage. Validated
// values win over the normalized ones where the engine returned them.
func attrsFor(res *builder.Resource, normalized, validated map[string]any) map[string]any {
	attrs := make(map[string]any, len(res.Fields)+len(res.Groups))
	pick := func(key string) {
		if v, ok := validated[key]; ok {
			attrs[key] = v
			return
		}
		if v, ok := normalized[key]; ok {
			attrs[key] = v
		}
	}
	for _, f := range res.Fields {
		pick(f.Key)
	}
	for _, g := range res.Groups {
		pick(g.Key())
	}
	return attrs
}

// itemsValue widens the processed rows to []any so the stored shape matches
// what a JSON round-trip of the attributes would produce.
func itemsValue(items []map[string]any) []any {
	value := make([]any, len(items))
	for i, item := range items {
		value[i] = item
	}
	return value
}

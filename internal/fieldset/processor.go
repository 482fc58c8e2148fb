package fieldset

import (
	"context"

	"github.com/panelforge/panelforge/internal/ctxlog"
	"github.com/panelforge/panelforge/internal/store"
)

// ProcessResult is the inverse of RenderResult: the submitted payload
// normalized into clean per-item attribute maps, plus the deferred
// attachment work collected along the way.
type ProcessResult struct {
	// Items are the surviving rows, in submission order, each carrying a
	// normalized `_id` and, for attachment fields, the collection name as
	// the persisted value.
	Items []map[string]any

	// Actions are the deferred attachment operations, in row order. They
	// must run after the parent record is persisted, inside the same
	// transaction.
	Actions []DeferredAction
}

// RequestProcessor consumes a submitted payload for one group, decides which
// rows are meaningful enough to keep, and collects deferred side-effects.
// No errors are raised while collecting; every decision is policy-based
// filtering. Downstream validation runs against the filtered list.
type RequestProcessor struct {
	fs    *Fieldset
	media *MediaManager
}

// NewRequestProcessor returns a processor for the fieldset.
func NewRequestProcessor(fs *Fieldset, media *MediaManager) *RequestProcessor {
	return &RequestProcessor{fs: fs, media: media}
}

// Process normalizes the group's submitted rows. parent may be nil when the
// enclosing record has never been persisted.
func (p *RequestProcessor) Process(ctx context.Context, payload map[string]any, meta Meta, parent store.Record) ProcessResult {
	rows := DecodeItems(payload[p.fs.key])

	var result ProcessResult
	dropped := 0
	for ordinal, row := range rows {
		stableID := resolveStableID(row, ordinal)

		kept := make(map[string]any, len(row)+1)
		for k, v := range row {
			kept[k] = v
		}
		kept[stableIDKey] = stableID

		meaningful := false
		for _, leaf := range p.fs.leaves() {
			if leaf.Kind.Media {
				op := p.media.CollectOperation(meta, p.fs.key, leaf, ordinal, stableID)
				if op.HasAny() {
					// Deletion-only operations are enqueued even when the
					// row ends up dropped: the user removed the assets, and
					// dropping the emptied row must not orphan that intent.
					result.Actions = append(result.Actions, p.media.MakeDeferredAction(op))
				}
				if isMeaningful(row[leaf.Key]) ||
					len(op.Uploaded) > 0 || len(op.Order) > 0 || len(op.Props) > 0 ||
					p.media.CalculateRemainingMedia(ctx, parent, op) > 0 {
					meaningful = true
				}
				// The persisted value is a pointer to the collection, not
				// the binary data itself.
				kept[leaf.Key] = op.Collection
			} else if isMeaningful(row[leaf.Key]) {
				meaningful = true
			}
		}

		if !meaningful && !p.fs.preserveEmpty {
			dropped++
			continue
		}
		result.Items = append(result.Items, kept)
	}

	ctxlog.FromContext(ctx).Debug("Processed fieldset submission.",
		"group", p.fs.key, "submitted", len(rows), "kept", len(result.Items),
		"dropped", dropped, "deferred_actions", len(result.Actions))
	return result
}

// isMeaningful reports whether a child-field value is non-trivial enough to
// keep its row: non-null, non-empty string, non-empty collection. Zero
// numbers and false booleans count as meaningful; the user typed them.
func isMeaningful(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		return value != ""
	case []any:
		return len(value) > 0
	case []map[string]any:
		return len(value) > 0
	case map[string]any:
		return len(value) > 0
	default:
		return true
	}
}

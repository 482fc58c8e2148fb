package fieldset

import (
	"context"
	"fmt"
	"sort"

	"github.com/panelforge/panelforge/internal/store"
)

// DeferredAction is a typed unit of attachment work that must run strictly
// after the parent entity has been durably persisted and has a primary
// identifier. The enclosing save workflow runs queued actions in enqueue
// order, inside the same transaction as the parent write; a failure rolls
// back both together.
//
// Applying an action performs its four independent steps in a fixed order:
// delete, reparent, reorder, merge properties. The later steps assume the
// earlier ones already fixed the collection's membership, so a deleted
// identifier can never collide with a freshly uploaded one reusing the same
// numeric id. Each step is a no-op on empty input, which makes running an
// action once per submission safe.
type DeferredAction struct {
	Op AttachmentOperation
}

// Apply executes the action against the now-persisted parent record.
// It satisfies store.PostCommitAction.
func (a DeferredAction) Apply(ctx context.Context, media store.AttachmentStore, parent store.Record) error {
	op := a.Op

	if len(op.Deleted) > 0 {
		if err := media.Delete(ctx, op.Collection, op.Deleted); err != nil {
			return fmt.Errorf("deleting attachments from %s: %w", op.Collection, err)
		}
	}

	if len(op.Uploaded) > 0 {
		if err := media.Reparent(ctx, op.Uploaded, parent.ID(), op.Collection); err != nil {
			return fmt.Errorf("reparenting attachments into %s: %w", op.Collection, err)
		}
	}

	for position, id := range op.Order {
		if err := media.SetPosition(ctx, id, position+1); err != nil {
			return fmt.Errorf("reordering attachment %d in %s: %w", id, op.Collection, err)
		}
	}

	// Map iteration order is random; sort so failures are reproducible.
	ids := make([]int64, 0, len(op.Props))
	for id := range op.Props {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := media.MergeProps(ctx, id, op.Props[id]); err != nil {
			return fmt.Errorf("merging properties of attachment %d in %s: %w", id, op.Collection, err)
		}
	}

	return nil
}

// Package store defines the persistence contracts the form engine builds
// against: parent records, attachment collections, and the typed post-commit
// actions that must run after a parent record has a durable identifier.
//
// The engine never talks to a database itself. Concrete implementations live
// in the memory and postgres subpackages.
package store

import (
	"context"
	"fmt"
)

// MissingAttachmentError reports a referenced attachment that no longer
// exists, e.g. an upload that disappeared between submission and commit.
// It propagates as a transaction failure: the parent save and all deferred
// actions roll back together.
type MissingAttachmentError struct {
	ID         int64
	Collection string
}

func (e *MissingAttachmentError) Error() string {
	return fmt.Sprintf("attachment %d not found for collection %s", e.ID, e.Collection)
}

// Record is a persisted (or about-to-be-persisted) parent entity with
// attribute access.
type Record interface {
	// ID returns the durable primary identifier. It is only meaningful
	// after the record has been persisted.
	ID() int64

	Get(key string) any
	Set(key string, value any)
	Has(key string) bool

	// Attributes returns the full attribute map.
	Attributes() map[string]any
}

// Attachment is the metadata of one binary asset belonging to a record's
// collection. Physical storage of the bytes is out of scope.
type Attachment struct {
	ID         int64
	OwnerID    int64
	Collection string
	FileName   string
	Position   int
	Props      map[string]any
}

// AttachmentStore manages attachment metadata scoped by owner record and
// collection name.
type AttachmentStore interface {
	CountByCollection(ctx context.Context, ownerID int64, collection string) (int, error)
	ListByCollection(ctx context.Context, ownerID int64, collection string) ([]Attachment, error)

	// Delete removes the given attachments, scoped to the collection.
	// Identifiers that do not exist in the collection are ignored.
	Delete(ctx context.Context, collection string, ids []int64) error

	// Reparent moves the given attachments (typically freshly uploaded and
	// still unowned) under the owner record and collection.
	Reparent(ctx context.Context, ids []int64, ownerID int64, collection string) error

	// SetPosition rewrites the sort position of one attachment.
	SetPosition(ctx context.Context, id int64, position int) error

	// MergeProps merges the given properties into the attachment's existing
	// property map. Existing keys not present in props are kept.
	MergeProps(ctx context.Context, id int64, props map[string]any) error
}

// PostCommitAction is a unit of work that must run strictly after the parent
// record has been durably persisted, inside the same logical transaction as
// the parent write. A RecordStore applies queued actions in order and rolls
// everything back together on failure.
type PostCommitAction interface {
	Apply(ctx context.Context, media AttachmentStore, parent Record) error
}

// RecordStore persists parent records and runs their queued post-commit
// actions atomically.
type RecordStore interface {
	Create(ctx context.Context, resource string, attrs map[string]any, actions []PostCommitAction) (Record, error)
	Update(ctx context.Context, resource string, id int64, attrs map[string]any, actions []PostCommitAction) (Record, error)
	Get(ctx context.Context, resource string, id int64) (Record, error)

	// Media exposes read access to attachment metadata outside of a save
	// transaction, for rendering and meaningfulness checks.
	Media() AttachmentStore
}

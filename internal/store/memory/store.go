// Package memory provides an ephemeral, thread-safe, in-memory
// implementation of the store contracts.
//
// It backs tests, local development, and the CLI. Saves are all-or-nothing:
// the store snapshots its state before running a record's post-commit
// actions and restores the snapshot if any action fails, mirroring the
// transactional behavior of the postgres implementation.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/panelforge/panelforge/internal/store"
)

// Store is an in-memory record and attachment store guarded by one mutex.
// Request processing is synchronous, so fine-grained locking buys nothing
// here; the single mutex keeps snapshot/restore trivially consistent.
type Store struct {
	mu           sync.Mutex
	nextRecordID int64
	nextMediaID  int64
	records      map[string]map[int64]map[string]any
	media        map[int64]*store.Attachment
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		nextRecordID: 1,
		nextMediaID:  1,
		records:      map[string]map[int64]map[string]any{},
		media:        map[int64]*store.Attachment{},
	}
}

// Create implements store.RecordStore.
func (s *Store) Create(ctx context.Context, resource string, attrs map[string]any, actions []store.PostCommitAction) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextRecordID
	s.nextRecordID++
	return s.saveLocked(ctx, resource, id, attrs, actions)
}

// Update implements store.RecordStore.
func (s *Store) Update(ctx context.Context, resource string, id int64, attrs map[string]any, actions []store.PostCommitAction) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[resource][id]; !ok {
		return nil, fmt.Errorf("record %d of resource %q not found", id, resource)
	}
	return s.saveLocked(ctx, resource, id, attrs, actions)
}

// Get implements store.RecordStore.
func (s *Store) Get(ctx context.Context, resource string, id int64) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attrs, ok := s.records[resource][id]
	if !ok {
		return nil, fmt.Errorf("record %d of resource %q not found", id, resource)
	}
	return &record{id: id, attrs: cloneAttrs(attrs)}, nil
}

// Media implements store.RecordStore.
func (s *Store) Media() store.AttachmentStore {
	return &lockedMedia{s: s}
}

// AddAttachment registers an attachment (typically a fresh, unowned upload:
// OwnerID zero) and returns its identifier. The transport layer owns this
// step in production; tests and the CLI use it directly.
func (s *Store) AddAttachment(att store.Attachment) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextMediaID
	s.nextMediaID++
	att.ID = id
	s.media[id] = &att
	return id
}

// saveLocked writes the record and runs its post-commit actions with the
// same lock held, restoring the previous state wholesale if anything fails.
func (s *Store) saveLocked(ctx context.Context, resource string, id int64, attrs map[string]any, actions []store.PostCommitAction) (store.Record, error) {
	snapshotMedia := s.snapshotMedia()
	previousAttrs, existed := s.records[resource][id]

	if s.records[resource] == nil {
		s.records[resource] = map[int64]map[string]any{}
	}
	s.records[resource][id] = cloneAttrs(attrs)
	rec := &record{id: id, attrs: cloneAttrs(attrs)}

	tx := &txMedia{s: s}
	for _, action := range actions {
		if err := action.Apply(ctx, tx, rec); err != nil {
			// Roll back the parent write and every attachment mutation.
			s.media = snapshotMedia
			if existed {
				s.records[resource][id] = previousAttrs
			} else {
				delete(s.records[resource], id)
			}
			return nil, fmt.Errorf("post-commit action failed: %w", err)
		}
	}
	return rec, nil
}

func (s *Store) snapshotMedia() map[int64]*store.Attachment {
	snapshot := make(map[int64]*store.Attachment, len(s.media))
	for id, att := range s.media {
		copied := *att
		copied.Props = cloneAttrs(att.Props)
		snapshot[id] = &copied
	}
	return snapshot
}

func cloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	cloned := make(map[string]any, len(attrs))
	for k, v := range attrs {
		cloned[k] = v
	}
	return cloned
}

// record is the in-memory store.Record.
type record struct {
	id    int64
	attrs map[string]any
}

func (r *record) ID() int64 { return r.id }

func (r *record) Get(key string) any {
	return r.attrs[key]
}

func (r *record) Set(key string, value any) {
	if r.attrs == nil {
		r.attrs = map[string]any{}
	}
	r.attrs[key] = value
}

func (r *record) Has(key string) bool {
	_, ok := r.attrs[key]
	return ok
}

func (r *record) Attributes() map[string]any { return r.attrs }

package fieldset

import (
	"context"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/panelforge/panelforge/internal/registry"
	"github.com/panelforge/panelforge/internal/store"
)

// fakeRecord is a minimal store.Record for tests.
type fakeRecord struct {
	id    int64
	attrs map[string]any
}

func newFakeRecord(id int64) *fakeRecord {
	return &fakeRecord{id: id, attrs: map[string]any{}}
}

func (r *fakeRecord) ID() int64                  { return r.id }
func (r *fakeRecord) Get(key string) any         { return r.attrs[key] }
func (r *fakeRecord) Set(key string, value any)  { r.attrs[key] = value }
func (r *fakeRecord) Has(key string) bool        { _, ok := r.attrs[key]; return ok }
func (r *fakeRecord) Attributes() map[string]any { return r.attrs }

// fakeMediaStore records every call in order so tests can assert on the
// exact operation sequence.
type fakeMediaStore struct {
	mu    sync.Mutex
	calls []string

	counts      map[string]int
	attachments map[string][]store.Attachment
	failOn      string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{
		counts:      map[string]int{},
		attachments: map[string][]store.Attachment{},
	}
}

func (f *fakeMediaStore) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failOn != "" && call == f.failOn {
		return fmt.Errorf("forced failure on %s", call)
	}
	return nil
}

func (f *fakeMediaStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeMediaStore) CountByCollection(_ context.Context, _ int64, collection string) (int, error) {
	return f.counts[collection], nil
}

func (f *fakeMediaStore) ListByCollection(_ context.Context, _ int64, collection string) ([]store.Attachment, error) {
	return f.attachments[collection], nil
}

func (f *fakeMediaStore) Delete(_ context.Context, collection string, ids []int64) error {
	return f.record(fmt.Sprintf("delete %s %v", collection, ids))
}

func (f *fakeMediaStore) Reparent(_ context.Context, ids []int64, ownerID int64, collection string) error {
	return f.record(fmt.Sprintf("reparent %v -> %d/%s", ids, ownerID, collection))
}

func (f *fakeMediaStore) SetPosition(_ context.Context, id int64, position int) error {
	return f.record(fmt.Sprintf("position %d=%d", id, position))
}

func (f *fakeMediaStore) MergeProps(_ context.Context, id int64, props map[string]any) error {
	return f.record(fmt.Sprintf("props %d", id))
}

var (
	kindText  = registry.Kind{Name: "text", Type: cty.String}
	kindImage = registry.Kind{Name: "image", Type: cty.String, Media: true}
)

// textLeaf and imageLeaf build the schema most tests share.
func textLeaf(key string) Leaf {
	return Leaf{Key: key, Kind: kindText}
}

func imageLeaf(key string) Leaf {
	return Leaf{Key: key, Kind: kindImage}
}

func leafEntry(l Leaf) SchemaEntry {
	return SchemaEntry{Leaf: &l}
}

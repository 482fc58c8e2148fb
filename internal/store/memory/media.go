package memory

import (
	"context"
	"sort"

	"github.com/panelforge/panelforge/internal/store"
)

// lockedMedia is the attachment view handed out by Media(): every call takes
// the store's lock.
type lockedMedia struct {
	s *Store
}

func (m *lockedMedia) CountByCollection(ctx context.Context, ownerID int64, collection string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return (&txMedia{s: m.s}).CountByCollection(ctx, ownerID, collection)
}

func (m *lockedMedia) ListByCollection(ctx context.Context, ownerID int64, collection string) ([]store.Attachment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return (&txMedia{s: m.s}).ListByCollection(ctx, ownerID, collection)
}

func (m *lockedMedia) Delete(ctx context.Context, collection string, ids []int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return (&txMedia{s: m.s}).Delete(ctx, collection, ids)
}

func (m *lockedMedia) Reparent(ctx context.Context, ids []int64, ownerID int64, collection string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return (&txMedia{s: m.s}).Reparent(ctx, ids, ownerID, collection)
}

func (m *lockedMedia) SetPosition(ctx context.Context, id int64, position int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return (&txMedia{s: m.s}).SetPosition(ctx, id, position)
}

func (m *lockedMedia) MergeProps(ctx context.Context, id int64, props map[string]any) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return (&txMedia{s: m.s}).MergeProps(ctx, id, props)
}

// txMedia is the attachment view used inside a save: the caller already
// holds the store's lock, so its methods operate on the maps directly.
type txMedia struct {
	s *Store
}

func (m *txMedia) CountByCollection(ctx context.Context, ownerID int64, collection string) (int, error) {
	count := 0
	for _, att := range m.s.media {
		if att.OwnerID == ownerID && att.Collection == collection {
			count++
		}
	}
	return count, nil
}

func (m *txMedia) ListByCollection(ctx context.Context, ownerID int64, collection string) ([]store.Attachment, error) {
	var attachments []store.Attachment
	for _, att := range m.s.media {
		if att.OwnerID == ownerID && att.Collection == collection {
			attachments = append(attachments, *att)
		}
	}
	sort.Slice(attachments, func(i, j int) bool {
		if attachments[i].Position != attachments[j].Position {
			return attachments[i].Position < attachments[j].Position
		}
		return attachments[i].ID < attachments[j].ID
	})
	return attachments, nil
}

func (m *txMedia) Delete(ctx context.Context, collection string, ids []int64) error {
	for _, id := range ids {
		if att, ok := m.s.media[id]; ok && att.Collection == collection {
			delete(m.s.media, id)
		}
	}
	return nil
}

func (m *txMedia) Reparent(ctx context.Context, ids []int64, ownerID int64, collection string) error {
	for _, id := range ids {
		att, ok := m.s.media[id]
		if !ok {
			return &store.MissingAttachmentError{ID: id, Collection: collection}
		}
		att.OwnerID = ownerID
		att.Collection = collection
	}
	return nil
}

func (m *txMedia) SetPosition(ctx context.Context, id int64, position int) error {
	if att, ok := m.s.media[id]; ok {
		att.Position = position
	}
	return nil
}

func (m *txMedia) MergeProps(ctx context.Context, id int64, props map[string]any) error {
	att, ok := m.s.media[id]
	if !ok {
		return nil
	}
	if att.Props == nil {
		att.Props = map[string]any{}
	}
	for k, v := range props {
		att.Props[k] = v
	}
	return nil
}

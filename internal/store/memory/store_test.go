package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelforge/panelforge/internal/store"
)

// actionFunc adapts a closure into a store.PostCommitAction for tests.
type actionFunc func(ctx context.Context, media store.AttachmentStore, parent store.Record) error

func (f actionFunc) Apply(ctx context.Context, media store.AttachmentStore, parent store.Record) error {
	return f(ctx, media, parent)
}

func TestCreateUpdateGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	created, err := s.Create(ctx, "article", map[string]any{"title": "first"}, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, created.ID())

	got, err := s.Get(ctx, "article", created.ID())
	require.NoError(t, err)
	assert.Equal(t, "first", got.Get("title"))

	_, err = s.Update(ctx, "article", created.ID(), map[string]any{"title": "second"}, nil)
	require.NoError(t, err)

	got, err = s.Get(ctx, "article", created.ID())
	require.NoError(t, err)
	assert.Equal(t, "second", got.Get("title"))

	_, err = s.Update(ctx, "article", 99, map[string]any{}, nil)
	require.Error(t, err)

	_, err = s.Get(ctx, "other", created.ID())
	require.Error(t, err, "records are scoped by resource")
}

func TestGetReturnsACopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	created, err := s.Create(ctx, "article", map[string]any{"title": "stored"}, nil)
	require.NoError(t, err)

	got, err := s.Get(ctx, "article", created.ID())
	require.NoError(t, err)
	got.Set("title", "mutated")

	again, err := s.Get(ctx, "article", created.ID())
	require.NoError(t, err)
	assert.Equal(t, "stored", again.Get("title"))
}

func TestPostCommitActionsRunWithPersistedID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	uploadID := s.AddAttachment(store.Attachment{FileName: "a.jpg"})

	var seenID int64
	action := actionFunc(func(ctx context.Context, media store.AttachmentStore, parent store.Record) error {
		seenID = parent.ID()
		return media.Reparent(ctx, []int64{uploadID}, parent.ID(), "gallery_1_photo")
	})

	created, err := s.Create(ctx, "article", map[string]any{}, []store.PostCommitAction{action})
	require.NoError(t, err)
	assert.Equal(t, created.ID(), seenID, "actions observe the durable identifier")

	attachments, err := s.Media().ListByCollection(ctx, created.ID(), "gallery_1_photo")
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "a.jpg", attachments[0].FileName)
}

func TestFailedActionRollsBackEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	uploadID := s.AddAttachment(store.Attachment{FileName: "a.jpg"})

	reparent := actionFunc(func(ctx context.Context, media store.AttachmentStore, parent store.Record) error {
		return media.Reparent(ctx, []int64{uploadID}, parent.ID(), "gallery_1_photo")
	})
	missing := actionFunc(func(ctx context.Context, media store.AttachmentStore, parent store.Record) error {
		return media.Reparent(ctx, []int64{777}, parent.ID(), "gallery_1_photo")
	})

	_, err := s.Create(ctx, "article", map[string]any{"title": "x"},
		[]store.PostCommitAction{reparent, missing})
	require.Error(t, err)

	var missingErr *store.MissingAttachmentError
	require.ErrorAs(t, err, &missingErr)
	assert.EqualValues(t, 777, missingErr.ID)

	// The record write rolled back.
	_, err = s.Get(ctx, "article", 1)
	require.Error(t, err)

	// So did the first action's reparent.
	attachments, err := s.Media().ListByCollection(ctx, 1, "gallery_1_photo")
	require.NoError(t, err)
	assert.Empty(t, attachments)
}

func TestFailedUpdateRestoresPreviousAttributes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	created, err := s.Create(ctx, "article", map[string]any{"title": "original"}, nil)
	require.NoError(t, err)

	failing := actionFunc(func(ctx context.Context, media store.AttachmentStore, parent store.Record) error {
		return media.Reparent(ctx, []int64{404}, parent.ID(), "c")
	})

	_, err = s.Update(ctx, "article", created.ID(), map[string]any{"title": "replaced"},
		[]store.PostCommitAction{failing})
	require.Error(t, err)

	got, err := s.Get(ctx, "article", created.ID())
	require.NoError(t, err)
	assert.Equal(t, "original", got.Get("title"))
}

func TestMediaOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()
	media := s.Media()

	a := s.AddAttachment(store.Attachment{OwnerID: 1, Collection: "gallery_1_photo", FileName: "a.jpg", Position: 2})
	b := s.AddAttachment(store.Attachment{OwnerID: 1, Collection: "gallery_1_photo", FileName: "b.jpg", Position: 1})
	s.AddAttachment(store.Attachment{OwnerID: 1, Collection: "gallery_2_photo", FileName: "c.jpg"})

	count, err := media.CountByCollection(ctx, 1, "gallery_1_photo")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	listed, err := media.ListByCollection(ctx, 1, "gallery_1_photo")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "b.jpg", listed[0].FileName, "listing is position-ordered")

	require.NoError(t, media.SetPosition(ctx, a, 0))
	listed, err = media.ListByCollection(ctx, 1, "gallery_1_photo")
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", listed[0].FileName)

	require.NoError(t, media.MergeProps(ctx, b, map[string]any{"alt": "beach"}))
	require.NoError(t, media.MergeProps(ctx, b, map[string]any{"credit": "jo"}))
	listed, err = media.ListByCollection(ctx, 1, "gallery_1_photo")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"alt": "beach", "credit": "jo"}, listed[1].Props,
		"merging keeps keys from earlier merges")

	// Delete is scoped to the collection: a wrong-collection id is ignored.
	require.NoError(t, media.Delete(ctx, "gallery_2_photo", []int64{a}))
	count, err = media.CountByCollection(ctx, 1, "gallery_1_photo")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, media.Delete(ctx, "gallery_1_photo", []int64{a}))
	count, err = media.CountByCollection(ctx, 1, "gallery_1_photo")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

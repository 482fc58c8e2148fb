package fieldset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind_RewritesNameWithOrdinal(t *testing.T) {
	t.Parallel()

	bound := textLeaf("caption").bind().Rebind("gallery", "3", "7")

	assert.Equal(t, "gallery[3][caption]", bound.Name)
	assert.Equal(t, "caption", bound.ChildKey)
	assert.Empty(t, bound.Collection, "non-media fields carry no collection")
}

func TestRebind_MediaCollectionUsesItemTokenNotOrdinal(t *testing.T) {
	t.Parallel()

	bound := imageLeaf("photo").bind().Rebind("gallery", "0", "2")

	assert.Equal(t, "gallery[0][photo]", bound.Name)
	assert.Equal(t, "gallery_2_photo", bound.Collection)
}

func TestRebind_IsPure(t *testing.T) {
	t.Parallel()

	original := imageLeaf("photo").bind()
	first := original.Rebind("gallery", "0", "5")
	second := original.Rebind("gallery", "1", "5")

	// The receiver never changes; rebinding the same source twice under
	// different ordinals yields independent results.
	assert.Equal(t, "photo", original.Name)
	assert.Equal(t, "gallery[0][photo]", first.Name)
	assert.Equal(t, "gallery[1][photo]", second.Name)
	assert.Equal(t, first.Collection, second.Collection,
		"collection follows the stable identifier, not the ordinal")
}

func TestRebind_Chained(t *testing.T) {
	t.Parallel()

	// Rebinding an already-bound field again must behave exactly like
	// binding fresh: ChildKey keeps the original key.
	bound := textLeaf("title").bind().Rebind("slides", "0", "1").Rebind("slides", "4", "9")

	assert.Equal(t, "slides[4][title]", bound.Name)
	assert.Equal(t, "title", bound.ChildKey)
}

func TestCollectionName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "gallery_2_photo", CollectionName("gallery", "2", "photo"))
	require.Equal(t, "gallery___ITEM___photo", CollectionName("gallery", PlaceholderItem, "photo"))
}

package dataview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapRecord struct {
	attrs map[string]any
}

func (r *mapRecord) ID() int64                  { return 1 }
func (r *mapRecord) Get(key string) any         { return r.attrs[key] }
func (r *mapRecord) Set(key string, value any)  { r.attrs[key] = value }
func (r *mapRecord) Has(key string) bool        { _, ok := r.attrs[key]; return ok }
func (r *mapRecord) Attributes() map[string]any { return r.attrs }

func TestView_MapSource(t *testing.T) {
	t.Parallel()

	v := OfMap(map[string]any{
		"title": "hello",
		"seo":   map[string]any{"meta": map[string]any{"desc": "d"}},
		"empty": nil,
	})

	assert.Equal(t, "hello", v.Get("title"))
	assert.Equal(t, "d", v.Get("seo.meta.desc"))
	assert.Nil(t, v.Get("missing"))
	assert.Nil(t, v.Get("seo.missing.deeper"))
	assert.Nil(t, v.Get("title.not.a.map"))

	assert.True(t, v.Has("title"))
	assert.True(t, v.Has("empty"), "a present nil value still counts as present")
	assert.False(t, v.Has("missing"))
	assert.False(t, v.Has("seo.meta.nope"))
}

func TestView_Set(t *testing.T) {
	t.Parallel()

	v := OfMap(map[string]any{})
	v.Set("title", "hello")
	v.Set("seo.meta.desc", "d")

	assert.Equal(t, "hello", v.Get("title"))
	assert.Equal(t, "d", v.Get("seo.meta.desc"))

	// Overwriting a scalar with a nested path replaces it with a map.
	v.Set("title.sub", "x")
	assert.Equal(t, "x", v.Get("title.sub"))
}

func TestView_RecordSource(t *testing.T) {
	t.Parallel()

	rec := &mapRecord{attrs: map[string]any{
		"title": "stored",
		"seo":   map[string]any{"desc": "d"},
	}}
	v := OfRecord(rec)

	assert.Equal(t, "stored", v.Get("title"))
	assert.Equal(t, "d", v.Get("seo.desc"))
	assert.False(t, v.Has("missing"))

	v.Set("title", "updated")
	assert.Equal(t, "updated", rec.Get("title"))

	v.Set("seo.desc", "e")
	require.IsType(t, map[string]any{}, rec.Get("seo"))
	assert.Equal(t, "e", rec.Get("seo").(map[string]any)["desc"])
}

package fieldset

import (
	"context"
	"strconv"
	"strings"

	"github.com/panelforge/panelforge/internal/store"
)

// FieldMeta is the sibling metadata the transport layer records for one
// attachment-bearing field during a submission: identifiers of freshly
// uploaded assets, assets marked for deletion, an explicit ordering, and
// per-asset property edits. Each entry may be a real list or a
// comma-separated string; it is parsed defensively either way.
type FieldMeta struct {
	Uploaded any
	Deleted  any
	Order    any
	Props    any
}

// Meta maps flattened field paths (see FlattenKey) to their attachment
// metadata.
type Meta map[string]FieldMeta

// AttachmentOperation is the normalized attachment work collected for one
// field of one item. All four sub-operations are independent and may be
// empty.
type AttachmentOperation struct {
	// Collection is the stable collection name the operation targets,
	// `group_stableID_childKey`.
	Collection string

	Uploaded []int64
	Deleted  []int64
	Order    []int64
	Props    map[int64]map[string]any
}

// HasAny reports whether at least one sub-operation carries work.
func (op AttachmentOperation) HasAny() bool {
	return len(op.Uploaded) > 0 || len(op.Deleted) > 0 || len(op.Order) > 0 || len(op.Props) > 0
}

// MediaManager computes stable attachment-collection names and turns
// transport metadata into deferred attachment operations.
type MediaManager struct {
	media store.AttachmentStore
}

// NewMediaManager returns a manager backed by the given attachment store.
// The store may be nil, in which case existing-attachment counts resolve
// to zero.
func NewMediaManager(media store.AttachmentStore) *MediaManager {
	return &MediaManager{media: media}
}

// CollectOperation looks up the metadata the transport layer attached under
// the field's current bracketed path and normalizes it into an
// AttachmentOperation keyed by the item's stable collection name.
func (m *MediaManager) CollectOperation(meta Meta, group string, leaf Leaf, ordinal, stableID int) AttachmentOperation {
	op := AttachmentOperation{
		Collection: CollectionName(group, strconv.Itoa(stableID), leaf.Key),
	}

	fieldPath := group + "[" + strconv.Itoa(ordinal) + "][" + leaf.Key + "]"
	fm, ok := meta[FlattenKey(fieldPath)]
	if !ok {
		return op
	}

	op.Uploaded = parseIDList(fm.Uploaded)
	op.Deleted = parseIDList(fm.Deleted)
	op.Order = parseIDList(fm.Order)
	op.Props = parseProps(fm.Props)
	return op
}

// MakeDeferredAction wraps an operation into the typed action the enclosing
// save workflow runs after the parent record exists.
func (m *MediaManager) MakeDeferredAction(op AttachmentOperation) DeferredAction {
	return DeferredAction{Op: op}
}

// CalculateRemainingMedia returns the collection's attachment count after
// the operation's deletions and uploads are applied: existing (zero when no
// parent exists yet) minus deletions plus uploads. The request processor
// uses it for the meaningfulness test; UI-side max-count enforcement uses it
// too.
func (m *MediaManager) CalculateRemainingMedia(ctx context.Context, parent store.Record, op AttachmentOperation) int {
	existing := 0
	if parent != nil && m.media != nil {
		count, err := m.media.CountByCollection(ctx, parent.ID(), op.Collection)
		if err == nil {
			existing = count
		}
	}
	return existing - len(op.Deleted) + len(op.Uploaded)
}

// FlattenKey collapses a bracketed field path into the flat key the
// transport layer files metadata under: `gallery[0][photo]` becomes
// `gallery_0_photo`. Repeated separators collapse and edges are trimmed.
func FlattenKey(fieldPath string) string {
	var b strings.Builder
	b.Grow(len(fieldPath))
	lastUnderscore := true // trims a leading separator
	for _, r := range fieldPath {
		if r == '[' || r == ']' || r == '_' {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	return strings.TrimSuffix(b.String(), "_")
}

// parseIDList accepts either a real list or a comma-separated string and
// returns positive, de-duplicated identifiers in their original order.
// Non-positive and non-numeric entries are discarded silently.
func parseIDList(raw any) []int64 {
	var candidates []any
	switch v := raw.(type) {
	case nil:
		return nil
	case []int64:
		for _, id := range v {
			candidates = append(candidates, id)
		}
	case []int:
		for _, id := range v {
			candidates = append(candidates, id)
		}
	case []any:
		candidates = v
	case string:
		for _, part := range strings.Split(v, ",") {
			candidates = append(candidates, strings.TrimSpace(part))
		}
	default:
		return nil
	}

	var ids []int64
	seen := map[int64]bool{}
	for _, c := range candidates {
		id, ok := toInt64(c)
		if !ok || id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// parseProps accepts a map keyed by attachment id (as number or string) of
// property maps. Entries with non-positive or non-numeric keys are dropped.
func parseProps(raw any) map[int64]map[string]any {
	var props map[int64]map[string]any

	add := func(key any, value any) {
		id, ok := toInt64(key)
		if !ok || id <= 0 {
			return
		}
		m, ok := value.(map[string]any)
		if !ok {
			return
		}
		if props == nil {
			props = map[int64]map[string]any{}
		}
		props[id] = m
	}

	switch v := raw.(type) {
	case map[int64]map[string]any:
		for id, m := range v {
			if id > 0 {
				if props == nil {
					props = map[int64]map[string]any{}
				}
				props[id] = m
			}
		}
	case map[string]map[string]any:
		for key, m := range v {
			add(key, m)
		}
	case map[string]any:
		for key, value := range v {
			add(key, value)
		}
	}
	return props
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

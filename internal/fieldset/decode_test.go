package fieldset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeItems(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		raw  any
		want []map[string]any
	}{
		{
			name: "nil yields empty",
			raw:  nil,
			want: nil,
		},
		{
			name: "structured list passes through",
			raw:  []any{map[string]any{"a": 1}, map[string]any{"b": 2}},
			want: []map[string]any{{"a": 1}, {"b": 2}},
		},
		{
			name: "typed map list passes through",
			raw:  []map[string]any{{"a": 1}},
			want: []map[string]any{{"a": 1}},
		},
		{
			name: "non-map entries are dropped, order preserved",
			raw:  []any{"junk", map[string]any{"a": 1}, 42, map[string]any{"b": 2}},
			want: []map[string]any{{"a": 1}, {"b": 2}},
		},
		{
			name: "JSON string decodes",
			raw:  `[{"title":"one"},{"title":"two"}]`,
			want: []map[string]any{{"title": "one"}, {"title": "two"}},
		},
		{
			name: "malformed JSON yields empty, not an error",
			raw:  `[{"title":`,
			want: nil,
		},
		{
			name: "empty string yields empty",
			raw:  "",
			want: nil,
		},
		{
			name: "scalar yields empty",
			raw:  17,
			want: nil,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := DecodeItems(tc.raw)
			require.Len(t, got, len(tc.want))
			for i := range tc.want {
				assert.Equal(t, tc.want[i], got[i])
			}
		})
	}
}

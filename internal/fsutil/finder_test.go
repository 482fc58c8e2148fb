package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	sub := filepath.Join(tempDir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))

	for _, name := range []string{"b.hcl", "a.hcl", "ignore.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), nil, 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(sub, "c.hcl"), nil, 0o600))

	files, err := FindFilesByExtension(tempDir, ".hcl")
	require.NoError(t, err)

	want := []string{
		filepath.Join(tempDir, "a.hcl"),
		filepath.Join(tempDir, "b.hcl"),
		filepath.Join(sub, "c.hcl"),
	}
	assert.Equal(t, want, files, "results are sorted and recursive")
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".hcl")
	require.Error(t, err)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_, _ = FindFilesByExtension(t.TempDir(), "")
	})
}

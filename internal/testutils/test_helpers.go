package testutils

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// WriteFile creates path (and its directory) on fs with content.
func WriteFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

// ReadFile returns the content of path on fs.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

// NewMemFs returns an in-memory file system with the given directories created.
func NewMemFs(t *testing.T, dirs ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, dir := range dirs {
		require.NoError(t, fs.MkdirAll(dir, 0755))
	}
	return fs
}

package fsutil_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/src/fsutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocalFileStore_ListFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "b")
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "nested", "c.pdf"), "c")

	store := fsutil.NewLocalFileStore()
	files, err := store.ListFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", filepath.Join("nested", "c.pdf")}, files)
}

func TestLocalFileStore_ListFilesErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain.txt")
	writeFile(t, file, "x")

	store := fsutil.NewLocalFileStore()

	_, err := store.ListFiles(filepath.Join(root, "missing"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)

	_, err = store.ListFiles(file)
	assert.ErrorIs(t, err, fsutil.ErrNotDirectory)
}

func TestLocalFileStore_Open(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "doc.txt")
	writeFile(t, path, "hello world")

	store := fsutil.NewLocalFileStore()
	f, size, err := store.Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, int64(11), size)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestLocalFileStore_GetFileStats(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "abc")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "de")

	store := fsutil.NewLocalFileStore()
	count, size, err := store.GetFileStats(root)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, int64(5), size)
}

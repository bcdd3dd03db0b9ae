package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageListOrdersByModification(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("submissions_forum/7/b.txt", []byte("b"))
	require.NoError(t, err)
	_, err = store.Save("submissions_forum/7/a.txt", []byte("a"))
	require.NoError(t, err)

	older := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(store.baseDir, "submissions_forum", "7", "b.txt"), older, older))

	files, err := store.List("submissions_forum/7")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "b.txt", files[0].Name)
	assert.Equal(t, "submissions_forum/7/b.txt", files[0].Path)
	assert.Equal(t, "a.txt", files[1].Name)
}

func TestLocalStorageListMissingDir(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	files, err := store.List("submissions_forum/99")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../escape.txt", []byte("x"))
	assert.ErrorIs(t, err, ErrOutsideBase)
	_, err = store.Open("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideBase)
	assert.ErrorIs(t, store.DeleteDir("."), ErrOutsideBase)
}

func TestLocalStorageOpenAndDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("exports/1/forum.html", []byte("<p>hi</p>"))
	require.NoError(t, err)

	f, err := store.Open("exports/1/forum.html")
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "<p>hi</p>", string(body))

	require.NoError(t, store.DeleteDir("exports/1"))
	_, err = store.Open("exports/1/forum.html")
	assert.Error(t, err)
}

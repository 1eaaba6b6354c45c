package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/worklog-report/internal/storage"
)

func TestWriteFileCreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "reports")

	w, err := storage.WriteFile(dir, "a.csv", []byte("x,y\n"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "a.csv"), w.Path)
	assert.Equal(t, int64(4), w.Size)
	data, err := os.ReadFile(w.Path)
	require.NoError(t, err)
	assert.Equal(t, "x,y\n", string(data))
}

func TestWriteFileReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()

	_, err := storage.WriteFile(dir, "a.csv", []byte("old content"))
	require.NoError(t, err)
	_, err = storage.WriteFile(dir, "a.csv", []byte("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.csv", entries[0].Name())
}

func TestWriteFileDirIsAFile(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := storage.WriteFile(blocker, "a.csv", []byte("x"))
	assert.Error(t, err)
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()

	written, err := storage.WriteAll(dir,
		storage.File{Name: "one.csv", Data: []byte("1")},
		storage.File{Name: "two.csv", Data: []byte("22")},
	)
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, int64(1), written[0].Size)
	assert.Equal(t, int64(2), written[1].Size)
	assert.FileExists(t, filepath.Join(dir, "two.csv"))
}

func TestWriteAllStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "taken"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taken", "keep"), []byte("x"), 0o600))

	written, err := storage.WriteAll(dir,
		storage.File{Name: "ok.csv", Data: []byte("1")},
		storage.File{Name: "taken", Data: []byte("2")},
		storage.File{Name: "never.csv", Data: []byte("3")},
	)
	require.Error(t, err)
	assert.Len(t, written, 1)
	assert.NoFileExists(t, filepath.Join(dir, "never.csv"))
}

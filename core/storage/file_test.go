package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	in := map[string]string{"vip": "config"}
	require.NoError(t, fs.Save(DocWebhooks, in))

	out := make(map[string]string)
	require.NoError(t, fs.Load(DocWebhooks, &out))
	assert.Equal(t, in, out)
}

func TestFileStoreLoadMissingFileIsEmptyState(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	out := map[string]string{}
	require.NoError(t, fs.Load("does-not-exist", &out))
	assert.Empty(t, out)
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	out := map[string]string{}
	assert.Error(t, fs.Load("broken", &out))
}

func TestFileStoreSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Save(DocWebhooks, map[string]int{"a": 1}))
	require.NoError(t, fs.Save(DocWebhooks, map[string]int{"a": 2}))

	// Không còn temp file sót lại sau khi commit
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DocWebhooks+".json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, DocWebhooks+".json"))
	require.NoError(t, err)
	out := map[string]int{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 2, out["a"])
}

func TestFileStoreCreatesDataDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	_, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

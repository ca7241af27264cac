package credcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/userdata-go/internal/testutil"
)

func TestFileStoreRoundTripsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cookies.json")

	first := NewFileStore(path, testutil.NopLogger())
	require.NoError(t, first.Set(KeyName, "alice"))
	require.NoError(t, first.Set(KeyAddress, ""))

	second := NewFileStore(path, testutil.NopLogger())
	v, ok := second.Get(KeyName)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)

	v, ok = second.Get(KeyAddress)
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = second.Get(KeyPassword)
	assert.False(t, ok)
}

func TestFileStoreIsOwnerOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	store := NewFileStore(path, testutil.NopLogger())
	require.NoError(t, store.Set(KeyPassword, "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreDelete(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "cookies.json"), testutil.NopLogger())
	require.NoError(t, store.Set(KeyName, "alice"))

	require.NoError(t, store.Delete(KeyName))
	require.NoError(t, store.Delete(KeyName))

	_, ok := store.Get(KeyName)
	assert.False(t, ok)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	logger, logs := testutil.CaptureLogger()
	store := NewFileStore(path, logger)
	_, ok := store.Get(KeyName)
	assert.False(t, ok)
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "credential cache unreadable")
	assert.Error(t, store.Set(KeyName, "alice"))
}

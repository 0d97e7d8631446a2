package releasecache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbxpi/rbxmanager/internal/domain/release"
)

// TestFileStore_CreateIdempotent verifies Create initializes once and never overwrites.
func TestFileStore_CreateIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "data.json")
	store := NewFileStore(path)

	require.False(t, store.Exists())
	require.NoError(t, store.Create(ctx))
	require.True(t, store.Exists())

	cache := release.Cache{"0": {Tag: "v1.0.0", Name: "First", Assets: []string{"RbxPI.rbxm"}}}
	require.NoError(t, store.Write(ctx, cache))

	// A second Create must leave the populated file alone.
	require.NoError(t, store.Create(ctx))
	require.Equal(t, cache, store.Read(ctx))
}

// TestFileStore_ReadCorrupted ensures structural corruption yields an empty cache, not an error.
func TestFileStore_ReadCorrupted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewFileStore(path)
	require.True(t, store.Read(ctx).Empty())
}

// TestFileStore_ReadMissing ensures a missing file reads as an empty cache.
func TestFileStore_ReadMissing(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	require.True(t, store.Read(context.Background()).Empty())
}

// TestFileStore_WriteReadStable ensures write(read()) reproduces identical file contents.
func TestFileStore_WriteReadStable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")
	store := NewFileStore(path)

	cache := release.Cache{
		"0": {Tag: "v1.0.0", Name: "First", Assets: []string{"RbxPI.rbxm", "notes.md"}},
		"1": {Tag: "v1.1.0", Name: "Second", Assets: []string{}},
	}
	require.NoError(t, store.Write(ctx, cache))

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, store.Read(ctx)))

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

// TestFileStore_AgeInDays checks age derivation from the file's modification time.
func TestFileStore_AgeInDays(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")
	store := NewFileStore(path)

	_, ok := store.AgeInDays()
	require.False(t, ok)

	require.NoError(t, store.Create(ctx))

	age, ok := store.AgeInDays()
	require.True(t, ok)
	require.Equal(t, 0, age)

	fiveDaysAgo := time.Now().Add(-5*24*time.Hour - time.Hour)
	require.NoError(t, os.Chtimes(path, fiveDaysAgo, fiveDaysAgo))

	age, ok = store.AgeInDays()
	require.True(t, ok)
	require.Equal(t, 5, age)
}

package release

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCache_Lookup verifies exact, case-sensitive, first-match tag lookup.
func TestCache_Lookup(t *testing.T) {
	t.Parallel()

	cache := Cache{
		"0": {Tag: "v1.0.0", Name: "First"},
		"1": {Tag: "v1.1.0", Name: "Second"},
		"2": {Tag: "v1.1.0", Name: "Duplicate"},
	}

	got, ok := cache.Lookup("v1.1.0")
	require.True(t, ok)
	require.Equal(t, "Second", got.Name)

	_, ok = cache.Lookup("V1.1.0")
	require.False(t, ok)

	_, ok = cache.Lookup("v9.9.9")
	require.False(t, ok)
}

// TestCache_Indexes ensures numeric ordering of string-encoded keys.
func TestCache_Indexes(t *testing.T) {
	t.Parallel()

	cache := Cache{
		"10": {Tag: "v0.10"},
		"2":  {Tag: "v0.2"},
		"0":  {Tag: "v0.0"},
	}

	require.Equal(t, []string{"0", "2", "10"}, cache.Indexes())
	require.False(t, cache.Empty())
	require.True(t, Cache{}.Empty())
}

// TestRelease_FirstAssetWithSuffix picks the first matching asset by list order.
func TestRelease_FirstAssetWithSuffix(t *testing.T) {
	t.Parallel()

	r := Release{
		Tag:    "v1.0.0",
		Assets: []string{"notes.md", "RbxPI.rbxm", "RbxPI-full.rbxm"},
	}

	asset, ok := r.FirstAssetWithSuffix(".rbxm")
	require.True(t, ok)
	require.Equal(t, "RbxPI.rbxm", asset)

	_, ok = r.FirstAssetWithSuffix(".zip")
	require.False(t, ok)
}

package catalog

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbxpi/rbxmanager/internal/domain/release"
	"github.com/rbxpi/rbxmanager/internal/repository/releasecache"
)

var errFetchFailed = errors.New("fetch failed")

// fakeFetcher returns a canned cache and counts invocations.
type fakeFetcher struct {
	cache release.Cache
	err   error
	calls int
}

func (f *fakeFetcher) FetchReleaseList(_ context.Context) (release.Cache, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	return f.cache, nil
}

func remoteCache() release.Cache {
	return release.Cache{
		"0": {Tag: "v1.1.0", Name: "Second", Assets: []string{"RbxPI.rbxm"}},
		"1": {Tag: "v1.0.0", Name: "First", Assets: []string{}},
	}
}

// seedCache writes a populated cache file whose mtime is the given number of days ago.
func seedCache(t *testing.T, path string, daysOld int) {
	t.Helper()

	ctx := context.Background()
	store := releasecache.NewFileStore(path)
	require.NoError(t, store.Write(ctx, remoteCache()))

	stamp := time.Now().Add(-time.Duration(daysOld)*24*time.Hour - time.Hour)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
}

// TestGetReleases_FirstRun covers the absent-cache scenario: the store is
// created, emptiness triggers a fetch, and the fresh collection is returned.
func TestGetReleases_FirstRun(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	fetcher := &fakeFetcher{cache: remoteCache()}
	cat := New(releasecache.NewFileStore(path), fetcher, &bytes.Buffer{})

	cache, err := cat.GetReleases(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, remoteCache(), cache)

	// The fetched collection was persisted.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestGetReleases_FreshCache verifies a recent cache is used without a fetch
// and without a staleness notice.
func TestGetReleases_FreshCache(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	seedCache(t, path, 1)

	var out bytes.Buffer

	fetcher := &fakeFetcher{err: errFetchFailed}
	cat := New(releasecache.NewFileStore(path), fetcher, &out)

	cache, err := cat.GetReleases(context.Background())
	require.NoError(t, err)
	require.Zero(t, fetcher.calls)
	require.Equal(t, remoteCache(), cache)
	require.NotContains(t, out.String(), "hasn't refreshed")
}

// TestGetReleases_WarnWindow verifies ages in the 3-6 day window show a
// notice but do not refresh.
func TestGetReleases_WarnWindow(t *testing.T) {
	t.Parallel()

	for _, days := range []int{3, 6} {
		path := filepath.Join(t.TempDir(), "data.json")
		seedCache(t, path, days)

		var out bytes.Buffer

		fetcher := &fakeFetcher{err: errFetchFailed}
		cat := New(releasecache.NewFileStore(path), fetcher, &out)

		cache, err := cat.GetReleases(context.Background())
		require.NoError(t, err)
		require.Zero(t, fetcher.calls)
		require.Equal(t, remoteCache(), cache)
		require.Contains(t, out.String(), "hasn't refreshed")
	}
}

// TestGetReleases_ForcedRefresh verifies the seven-day threshold triggers a refetch.
func TestGetReleases_ForcedRefresh(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	seedCache(t, path, 7)

	refreshed := release.Cache{"0": {Tag: "v2.0.0", Name: "New", Assets: []string{}}}
	fetcher := &fakeFetcher{cache: refreshed}
	cat := New(releasecache.NewFileStore(path), fetcher, &bytes.Buffer{})

	cache, err := cat.GetReleases(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, refreshed, cache)
}

// TestGetReleases_RefreshFailureIsFatal verifies a network failure during a
// forced refresh aborts rather than serving stale data.
func TestGetReleases_RefreshFailureIsFatal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	seedCache(t, path, 8)

	fetcher := &fakeFetcher{err: errFetchFailed}
	cat := New(releasecache.NewFileStore(path), fetcher, &bytes.Buffer{})

	_, err := cat.GetReleases(context.Background())
	require.ErrorIs(t, err, errFetchFailed)
}

// TestValidateRelease checks exact case-sensitive matching against the cache.
func TestValidateRelease(t *testing.T) {
	t.Parallel()

	cat := New(releasecache.NewFileStore(filepath.Join(t.TempDir(), "data.json")), &fakeFetcher{}, &bytes.Buffer{})
	ctx := context.Background()
	cache := remoteCache()

	got, ok := cat.ValidateRelease(ctx, cache, "v1.0.0")
	require.True(t, ok)
	require.Equal(t, "First", got.Name)

	_, ok = cat.ValidateRelease(ctx, cache, "V1.0.0")
	require.False(t, ok)

	_, ok = cat.ValidateRelease(ctx, cache, "v9.9.9")
	require.False(t, ok)
}

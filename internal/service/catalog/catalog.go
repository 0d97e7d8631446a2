package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rbxpi/rbxmanager/internal/domain/release"
	"github.com/rbxpi/rbxmanager/internal/logger"
	"github.com/rbxpi/rbxmanager/internal/repository/releasecache"
)

const (
	// warnAfterDays is the cache age at which a staleness notice is shown.
	// Informational only: it never forces a refresh.
	warnAfterDays = 3

	// refreshAfterDays is the cache age at which a refetch is forced.
	refreshAfterDays = 7
)

// Fetcher retrieves the current release set from the remote listing endpoint.
type Fetcher interface {
	FetchReleaseList(ctx context.Context) (release.Cache, error)
}

// Catalog is the single freshness and validation authority over release data.
// It layers the staleness policy on top of the cache store and the fetcher.
type Catalog struct {
	store   releasecache.Store
	fetcher Fetcher
	out     io.Writer
}

// New creates a catalog over the given store and fetcher.
// Output defaults to stdout when out is nil.
func New(store releasecache.Store, fetcher Fetcher, out io.Writer) *Catalog {
	if out == nil {
		out = os.Stdout
	}

	return &Catalog{
		store:   store,
		fetcher: fetcher,
		out:     out,
	}
}

// GetReleases returns the current release cache, refreshing it from the
// remote endpoint when it is empty or at least refreshAfterDays old. A
// refresh failure is returned as an error and aborts the caller: an unusable
// release list makes the interactive flow meaningless, so there is no
// fallback to stale data. The cache contents and any staleness notice are
// rendered to the catalog's output before returning.
func (c *Catalog) GetReleases(ctx context.Context) (release.Cache, error) {
	if !c.store.Exists() {
		logger.Info(ctx, "Cache not found, initializing a new one")

		if err := c.store.Create(ctx); err != nil {
			return nil, fmt.Errorf("initialize cache: %w", err)
		}
	}

	cache := c.store.Read(ctx)
	age, hasAge := c.store.AgeInDays()

	if cache.Empty() || (hasAge && age >= refreshAfterDays) {
		if cache.Empty() {
			logger.Info(ctx, "Cache is empty, fetching data from remote")
		} else {
			logger.Infof(ctx, "Cache is %d days old, auto-updating", age)
		}

		if err := c.refresh(ctx); err != nil {
			return nil, err
		}

		cache = c.store.Read(ctx)
		age, hasAge = c.store.AgeInDays()
	} else {
		logger.Debugf(ctx, "Using cached releases (age: %d days)", age)
	}

	c.render(cache, age, hasAge)

	return cache, nil
}

// ValidateRelease returns the first entry whose tag exactly equals the
// requested one. Matching is case-sensitive with no normalization.
func (c *Catalog) ValidateRelease(ctx context.Context, cache release.Cache, tag string) (release.Release, bool) {
	logger.Debugf(ctx, "Validating release tag %q", tag)

	found, ok := cache.Lookup(tag)
	if !ok {
		logger.Warnf(ctx, "Release tag %q not found in the cache", tag)
	}

	return found, ok
}

// refresh replaces the cache wholesale with a fresh fetch.
func (c *Catalog) refresh(ctx context.Context) error {
	cache, err := c.fetcher.FetchReleaseList(ctx)
	if err != nil {
		return fmt.Errorf("refresh release list: %w", err)
	}

	if err = c.store.Write(ctx, cache); err != nil {
		return fmt.Errorf("persist release list: %w", err)
	}

	return nil
}

// render prints the release table and, past the warn window, a staleness notice.
func (c *Catalog) render(cache release.Cache, age int, hasAge bool) {
	if cache.Empty() {
		return
	}

	fmt.Fprintf(c.out, "\n%-13s%-26s%s\n", "Version", "Name", "Managed By")

	for _, index := range cache.Indexes() {
		entry := cache[index]
		fmt.Fprintf(c.out, "%-13s%-26s%s\n", entry.Tag, entry.Name, "BlockGuard SF")
	}

	fmt.Fprintln(c.out)

	if hasAge && age >= warnAfterDays {
		fmt.Fprintf(c.out,
			"* RbxPI Install Manager hasn't refreshed its release cache in a while.\n"+
				"* The cache will be refreshed automatically %d days from now.\n\n",
			refreshAfterDays-age)
	}
}

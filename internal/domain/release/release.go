package release

import (
	"sort"
	"strconv"
	"strings"
)

// UndefinedField is substituted for release metadata missing from the API payload.
const UndefinedField = "undefined"

// UnknownVersion marks an installation whose version marker is missing or unreadable.
// It is a sentinel, not an error: update workflows continue with it.
const UnknownVersion = "unknown"

// Release is a tagged, named version of RbxPI with its downloadable asset names.
// Releases are immutable once fetched; a refresh replaces the whole set.
type Release struct {
	// Tag is the unique version string, e.g. "v1.2.0".
	Tag string `json:"tag"`
	// Name is the human-readable release title.
	Name string `json:"name"`
	// Assets lists downloadable asset filenames in API order.
	Assets []string `json:"assets"`
}

// Cache is the last-known release set, keyed by string-encoded sequential
// integers assigned at fetch time. Ordering is the API response order and
// must not be assumed sorted by version.
type Cache map[string]Release

// Empty reports whether the cache holds no releases.
func (c Cache) Empty() bool {
	return len(c) == 0
}

// Indexes returns the cache keys in ascending numeric order.
// Non-numeric keys sort last so a damaged cache still iterates deterministically.
func (c Cache) Indexes() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])

		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	return keys
}

// Lookup returns the first release whose tag exactly equals the query.
// Matching is case-sensitive with no normalization.
func (c Cache) Lookup(tag string) (Release, bool) {
	for _, index := range c.Indexes() {
		if c[index].Tag == tag {
			return c[index], true
		}
	}

	return Release{}, false
}

// FirstAssetWithSuffix returns the first asset, in list order, whose name
// ends with the given suffix.
func (r Release) FirstAssetWithSuffix(suffix string) (string, bool) {
	for _, asset := range r.Assets {
		if strings.HasSuffix(asset, suffix) {
			return asset, true
		}
	}

	return "", false
}

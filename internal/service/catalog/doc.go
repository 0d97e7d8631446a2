// Package catalog decides when cached release metadata is usable.
//
// The Catalog ensures the cache store exists, refetches the release list
// when the cache is empty or at least seven days old, warns at three days,
// and validates user-selected tags against the cache. The warn and refresh
// thresholds are independent knobs.
package catalog

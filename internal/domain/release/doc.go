// Package release defines the domain model for RbxPI releases.
//
// A Cache is the last successfully fetched release set keyed by sequential
// string indexes; it is replaced wholesale on refresh, never merged.
package release

// Package releasecache implements persistence for the release Cache.
//
// The FileStore stores the last-known release set as indented JSON on disk
// and exposes a Store interface that the catalog service depends on. Cache
// age is derived from the file's modification time, not stored as a field.
package releasecache

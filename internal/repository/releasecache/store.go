package releasecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rbxpi/rbxmanager/internal/config"
	"github.com/rbxpi/rbxmanager/internal/domain/release"
	"github.com/rbxpi/rbxmanager/internal/logger"
)

// Store defines persistence operations for the release cache.
type Store interface {
	Exists() bool
	Create(ctx context.Context) error
	Read(ctx context.Context) release.Cache
	Write(ctx context.Context, cache release.Cache) error
	AgeInDays() (int, bool)
}

// FileStore persists the release cache as an indented JSON file on disk.
// The file is human-diffable: keys are string-encoded sequential integers
// and serialization is deterministic, so re-serializing a read cache is a
// no-op.
type FileStore struct {
	// path is the filesystem location of the JSON cache file.
	path string
	// mu protects concurrent access to the cache file.
	mu sync.Mutex
}

// NewFileStore creates a store that reads/writes JSON at the provided path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: filepath.Clean(path),
	}
}

// Exists reports whether the cache file is present on disk.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)

	return err == nil
}

// Create initializes an empty cache file if none exists yet.
// An existing file is never overwritten.
func (s *FileStore) Create(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		logger.Debugf(ctx, "Cache file already exists, skipping creation: %s", s.path)
		return nil
	}

	logger.InfoKV(ctx, "Initializing new cache file", "path", s.path)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	if err := os.WriteFile(s.path, []byte("{}"), config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}

	return nil
}

// Read parses the cache file into the release collection.
// A missing or structurally corrupted file yields an empty cache: corruption
// is logged, not raised, and the catalog treats emptiness as "fetch again".
func (s *FileStore) Read(ctx context.Context) release.Cache {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warnf(ctx, "Cache file not found during read: %s", s.path)
		} else {
			logger.ErrorKV(ctx, "Unable to read cache file", "path", s.path, "error", err)
		}

		return release.Cache{}
	}

	var cache release.Cache
	if err = json.Unmarshal(contents, &cache); err != nil {
		logger.ErrorKV(ctx, "Cache file is corrupted", "path", s.path, "error", err)
		return release.Cache{}
	}

	logger.Debugf(ctx, "Loaded %d releases from cache", len(cache))

	return cache
}

// Write replaces the cache file contents wholesale with the given collection.
func (s *FileStore) Write(ctx context.Context, cache release.Cache) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.DebugKV(ctx, "Saving releases to cache", "count", len(cache), "path", s.path)

	data, err := json.MarshalIndent(cache, "", "    ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	if err = os.WriteFile(s.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// AgeInDays returns the whole days elapsed since the cache file was last
// modified. The second return value is false when the file does not exist.
func (s *FileStore) AgeInDays() (int, bool) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, false
	}

	return int(time.Since(info.ModTime()).Hours() / 24), true
}

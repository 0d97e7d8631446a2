package github

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	errEmptyArchive    = errors.New("archive contains no entries")
	errEntryEscapesDir = errors.New("archive entry escapes destination directory")
)

// ExtractArchive opens a zip archive, extracts its contents beneath the
// destination directory and returns the name of the single top-level folder,
// taken from the first path segment of the first entry. Source archives are
// expected to hold one top-level folder containing a src/RbxPI subtree.
func ExtractArchive(archivePath, destination string) (string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive %s: %w", archivePath, err)
	}

	defer func() {
		_ = reader.Close()
	}()

	if len(reader.File) == 0 {
		return "", errEmptyArchive
	}

	topLevel, _, _ := strings.Cut(reader.File[0].Name, "/")

	for _, entry := range reader.File {
		if err = extractEntry(entry, destination); err != nil {
			return "", err
		}
	}

	return topLevel, nil
}

// extractEntry writes a single archive entry below the destination directory.
func extractEntry(entry *zip.File, destination string) error {
	target := filepath.Join(destination, filepath.FromSlash(entry.Name))

	// Reject entries that traverse outside the destination.
	if !strings.HasPrefix(target, filepath.Clean(destination)+string(os.PathSeparator)) {
		return fmt.Errorf("%s: %w", entry.Name, errEntryEscapesDir)
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", entry.Name, err)
	}

	source, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", entry.Name, err)
	}

	defer func() {
		_ = source.Close()
	}()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode())
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	defer func() {
		_ = out.Close()
	}()

	if _, err = io.Copy(out, source); err != nil { //nolint:gosec // Archives come from the configured release host.
		return fmt.Errorf("extract %s: %w", entry.Name, err)
	}

	return nil
}

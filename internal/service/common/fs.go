package common

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var errDestinationExists = errors.New("destination already exists")

// CopyTree recursively copies the directory at src to dst, preserving file
// modes. It refuses to copy over an existing destination.
func CopyTree(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%s: %w", dst, errDestinationExists)
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relative, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, relative)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}

		return copyFile(path, target, info.Mode())
	})
}

// copyFile copies a single regular file.
func copyFile(src, dst string, mode os.FileMode) error {
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}

	defer func() {
		_ = source.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	defer func() {
		_ = out.Close()
	}()

	if _, err = io.Copy(out, source); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	return nil
}

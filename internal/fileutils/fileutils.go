// Package fileutils provides utility functions for handling files.
package fileutils

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
)

// AtomicWrite writes data to a file atomically on the given filesystem.
// If the file already exists, then it will be overwritten.
// Parent directories are created as needed.
// Not atomic on Windows.
func AtomicWrite(fsys afero.Fs, path string, data []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("could not create parent directory: %v", err)
	}

	tmp, err := afero.TempFile(fsys, filepath.Dir(path), "tmp-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file: %v", err)
	}
	// Some filesystems rename the open file in place, so its name must be kept before the rename.
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		_ = tmp.Close()
		if renamed {
			return
		}
		if err := fsys.Remove(tmpName); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to remove temporary file", "file", tmpName, "error", err)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("could not write to temporary file: %v", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temporary file: %v", err)
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		return fmt.Errorf("could not rename temporary file: %v", err)
	}
	renamed = true
	return nil
}

// Exists returns true if path exists on the filesystem, and is a regular file.
func Exists(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// RemoveAll removes path and any children it contains.
// A missing path is not an error, so it is safe to call on every exit path.
func RemoveAll(fsys afero.Fs, path string) error {
	if path == "" {
		return nil
	}
	if err := fsys.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not remove %s: %v", path, err)
	}
	return nil
}

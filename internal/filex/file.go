// Package filex manages the local staging area for media uploads.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// EnsureSubDir creates base/name (and parents) if missing and returns its path.
// An empty base means the current working directory.
func EnsureSubDir(base, name string) (string, error) {
	if base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		base = cwd
	}

	dir := filepath.Join(base, name)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// RemoveStaged deletes a staged upload. A file that is already gone is not an error.
func RemoveStaged(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

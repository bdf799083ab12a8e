// Package scratch hands out private working directories for pipeline jobs.
package scratch

import (
	"fmt"
	"os"
)

// Do creates a fresh directory under root (os.TempDir when empty), runs fn
// with its path and removes the directory on every return path, including panics.
func Do(root, pattern string, fn func(dir string) error) (err error) {
	dir, err := os.MkdirTemp(root, pattern)
	if err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil && err == nil {
			err = fmt.Errorf("failed to remove scratch dir: %w", rmErr)
		}
	}()

	return fn(dir)
}

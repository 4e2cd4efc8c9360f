// Package storage reports on the persisted index: document counts and disk usage.
package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/hyperjump/rekishi/internal/config"
	"github.com/hyperjump/rekishi/internal/vector"
)

// DiskUsage sums the sizes of the files backing the configured store, such as
// the SQLite database with its -wal and -shm files or the gob snapshot of the
// memory store. Files not yet written count as 0. ok is false for stores that
// keep nothing on local disk.
func DiskUsage(cfg *config.StorageConfig) (n int64, ok bool, err error) {
	paths := vector.StorePaths(cfg)
	if len(paths) == 0 {
		return 0, false, nil
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, true, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		n += info.Size()
	}
	return n, true, nil
}

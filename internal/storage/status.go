package storage

import (
	"context"
	"fmt"

	"github.com/hyperjump/rekishi/internal/config"
	"github.com/hyperjump/rekishi/internal/models"
)

// Collection is the part of vector.Collection that status reporting reads.
type Collection interface {
	Count(ctx context.Context) (int64, error)
	Name() string
	StoreType() string
	Dimensions() int
}

// Status counts the documents in c and measures the on-disk size of the
// configured store. Disk usage is omitted for stores without local files.
func Status(ctx context.Context, c Collection, cfg *config.Config) (*models.IndexStatus, error) {
	count, err := c.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	status := &models.IndexStatus{
		Documents:  count,
		Collection: c.Name(),
		StoreType:  c.StoreType(),
		Provider:   cfg.Embedding.Provider,
		Dimensions: c.Dimensions(),
	}
	n, ok, err := DiskUsage(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to measure disk usage: %w", err)
	}
	if ok {
		status.IndexPath = cfg.Storage.IndexPath
		status.DiskUsageBytes = &n
	}
	return status, nil
}

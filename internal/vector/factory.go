package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/rekishi/internal/config"
)

// Store type identifiers.
const (
	TypeSQLiteVec = config.StoreSQLiteVec
	TypeMemory    = config.StoreMemory
	TypePGVector  = config.StorePGVector
)

// ErrUnknownStoreType is returned for an unsupported storage type.
var ErrUnknownStoreType = errors.New("unknown store type")

// NewStore opens the backend selected by cfg.Type for vectors of the given dimension.
func NewStore(ctx context.Context, cfg *config.StorageConfig, dimensions int) (Store, error) {
	collection := cfg.Collection
	if collection == "" {
		collection = config.DefaultCollection
	}
	switch cfg.Type {
	case TypeSQLiteVec, "":
		return NewSQLiteVecStore(cfg.IndexPath, collection, dimensions)
	case TypeMemory:
		path := ""
		if cfg.IndexPath != "" {
			path = cfg.IndexPath + "." + collection + ".gob"
		}
		return NewMemoryStore(dimensions, path)
	case TypePGVector:
		return NewPGVectorStore(ctx, cfg.PostgresDSN, collection, dimensions)
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s, %s, %s)",
			ErrUnknownStoreType, cfg.Type, TypeSQLiteVec, TypeMemory, TypePGVector)
	}
}

// StorePaths returns the files on disk that back cfg, for disk usage reporting.
func StorePaths(cfg *config.StorageConfig) []string {
	switch cfg.Type {
	case TypePGVector:
		return nil
	case TypeMemory:
		collection := cfg.Collection
		if collection == "" {
			collection = config.DefaultCollection
		}
		return []string{cfg.IndexPath + "." + collection + ".gob"}
	default:
		return []string{cfg.IndexPath, cfg.IndexPath + "-wal", cfg.IndexPath + "-shm"}
	}
}

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/rekishi/internal/config"
	"github.com/hyperjump/rekishi/internal/embedding"
	"github.com/hyperjump/rekishi/internal/indexer"
	"github.com/hyperjump/rekishi/internal/search"
	"github.com/hyperjump/rekishi/internal/vector"
)

// Components holds initialized services.
type Components struct {
	Collection *vector.Collection
	Engine     *search.Engine
	Indexer    *indexer.Indexer
}

// Close releases the store and the embedder.
func (c *Components) Close() {
	if c.Collection != nil {
		_ = c.Collection.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, idxOpts ...indexer.IndexerOption) (*Components, error) {
	embedder, err := embedding.NewEmbedder(&cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	coll, err := vector.Open(ctx, &cfg.Storage, embedder)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	logger.Debug("components initialized",
		zap.String("provider", cfg.Embedding.Provider),
		zap.Int("dimensions", embedder.Dimensions()),
		zap.String("store", coll.StoreType()),
		zap.String("collection", coll.Name()))

	opts := append([]indexer.IndexerOption{indexer.WithLogger(logger)}, idxOpts...)
	return &Components{
		Collection: coll,
		Engine:     search.NewEngine(coll, &cfg.Search, search.WithLogger(logger)),
		Indexer:    indexer.NewIndexer(coll, opts...),
	}, nil
}

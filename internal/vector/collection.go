package vector

import (
	"context"
	"fmt"

	"github.com/hyperjump/rekishi/internal/config"
	"github.com/hyperjump/rekishi/internal/embedding"
	"github.com/hyperjump/rekishi/internal/models"
)

// Collection binds a Store to the embedder that was chosen when it was opened.
// Documents and queries are always embedded with that same embedder.
type Collection struct {
	name     string
	store    Store
	embedder embedding.Embedder
}

// NewCollection returns a collection over store using embedder.
func NewCollection(name string, store Store, embedder embedding.Embedder) *Collection {
	return &Collection{name: name, store: store, embedder: embedder}
}

// Open opens the configured store sized for embedder and wraps it in a Collection.
func Open(ctx context.Context, cfg *config.StorageConfig, embedder embedding.Embedder) (*Collection, error) {
	store, err := NewStore(ctx, cfg, embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Type, err)
	}
	name := cfg.Collection
	if name == "" {
		name = config.DefaultCollection
	}
	return NewCollection(name, store, embedder), nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// StoreType returns the backend type of the collection.
func (c *Collection) StoreType() string { return c.store.Type() }

// Dimensions returns the embedding dimension of the collection.
func (c *Collection) Dimensions() int { return c.embedder.Dimensions() }

// Exists reports whether a document with id is indexed.
func (c *Collection) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := c.store.Has(ctx, id)
	if err != nil {
		return false, &models.IndexOperationError{Op: "exists", ID: id, Err: err}
	}
	return ok, nil
}

// Insert embeds documentText and stores it with its metadata under id.
func (c *Collection) Insert(ctx context.Context, id, documentText string, metadata models.Metadata) error {
	vec, err := c.embedder.Embed(ctx, documentText)
	if err != nil {
		return &models.IndexOperationError{Op: "embed", ID: id, Err: err}
	}
	if err := c.store.Add(ctx, Entry{ID: id, Document: documentText, Metadata: metadata, Vector: vec}); err != nil {
		return &models.IndexOperationError{Op: "insert", ID: id, Err: err}
	}
	return nil
}

// NearestNeighbors embeds queryText and returns up to k items ordered by ascending distance.
func (c *Collection) NearestNeighbors(ctx context.Context, queryText string, k int) ([]*models.ResultItem, error) {
	vec, err := c.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, &models.IndexOperationError{Op: "embed", Err: err}
	}
	hits, err := c.store.Search(ctx, vec, k)
	if err != nil {
		return nil, &models.IndexOperationError{Op: "query", Err: err}
	}
	items := make([]*models.ResultItem, len(hits))
	for i, h := range hits {
		items[i] = &models.ResultItem{ID: h.ID, Document: h.Document, Metadata: h.Metadata, Distance: h.Distance}
	}
	return items, nil
}

// Count returns the number of indexed documents.
func (c *Collection) Count(ctx context.Context) (int64, error) {
	n, err := c.store.Count(ctx)
	if err != nil {
		return 0, &models.IndexOperationError{Op: "count", Err: err}
	}
	return n, nil
}

// Close closes the store and the embedder.
func (c *Collection) Close() error {
	storeErr := c.store.Close()
	embErr := c.embedder.Close()
	if storeErr != nil {
		return storeErr
	}
	return embErr
}

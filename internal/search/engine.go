// Package search runs semantic queries over the history index: nearest-neighbor
// retrieval, metadata filtering, optional recency ordering and relevance scoring.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/rekishi/internal/config"
	"github.com/hyperjump/rekishi/internal/models"
)

// Index answers nearest-neighbor queries. It is implemented by vector.Collection.
type Index interface {
	NearestNeighbors(ctx context.Context, queryText string, k int) ([]*models.ResultItem, error)
}

// Engine executes search queries against an index.
type Engine struct {
	index  Index
	config *config.SearchConfig
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for query diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a search engine over index.
func NewEngine(index Index, cfg *config.SearchConfig, opts ...Option) *Engine {
	e := &Engine{index: index, config: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query fetches the Limit nearest neighbors of the query text, drops those that
// fail the filters, optionally reorders newest first, and scores relevance over
// what is left. Filtering never triggers a second fetch, so fewer than Limit
// results (or none) may come back even when more matches exist in the index.
// Index failures are returned as *models.IndexOperationError.
func (e *Engine) Query(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	if err := ProcessQuery(query, e.config); err != nil {
		return nil, err
	}

	candidates, err := e.index.NearestNeighbors(ctx, query.Query, query.Limit)
	if err != nil {
		return nil, err
	}

	results := Filter(candidates, Predicates(query.Filters))
	if query.SortByRecency {
		if err := SortByRecency(results); err != nil {
			return nil, err
		}
	}
	Normalize(results)

	if results == nil {
		results = []*models.ResultItem{}
	}
	resp := &models.SearchResponse{
		Query:           query.Query,
		Results:         results,
		Candidates:      len(candidates),
		Total:           len(results),
		SortedByRecency: query.SortByRecency,
		QueryTime:       time.Since(start).Milliseconds(),
	}
	e.logger.Debug("query executed",
		zap.String("query", query.Query),
		zap.Int("k", query.Limit),
		zap.Int("candidates", resp.Candidates),
		zap.Int("results", resp.Total),
		zap.Bool("recency", query.SortByRecency),
		zap.Int64("ms", resp.QueryTime))
	return resp, nil
}

// Package indexer ingests history rows into the vector index, one record at a time.
package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/rekishi/internal/models"
	"github.com/hyperjump/rekishi/internal/record"
)

// Index is the part of the vector index the indexer writes to. It is
// implemented by vector.Collection.
type Index interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, id, documentText string, metadata models.Metadata) error
}

// ProgressFunc is called after each row with the number of rows processed so far.
type ProgressFunc func(done, total int)

// Indexer ingests rows into an index. Ingestions run one at a time: a call
// made while another is in progress waits for it to finish.
type Indexer struct {
	index    Index
	logger   *zap.Logger
	progress ProgressFunc

	mu sync.Mutex
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for per-record debug output and failure warnings.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithProgress sets a callback invoked after every row.
func WithProgress(fn ProgressFunc) IndexerOption {
	return func(idx *Indexer) { idx.progress = fn }
}

// NewIndexer creates an indexer writing to index.
func NewIndexer(index Index, opts ...IndexerOption) *Indexer {
	idx := &Indexer{index: index, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IngestFile reads a CSV or .xlsx history export and ingests every row.
// Only a file that cannot be read or lacks required columns returns an error;
// row-level problems are recorded in the report.
func (idx *Indexer) IngestFile(ctx context.Context, path string) (*models.IngestionReport, error) {
	rows, err := record.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return idx.Ingest(ctx, path, rows), nil
}

// Ingest processes rows in order. Rows whose id is already indexed are skipped;
// new rows are normalized and inserted. A failing row is recorded and never
// stops the batch.
func (idx *Indexer) Ingest(ctx context.Context, source string, rows []record.Row) *models.IngestionReport {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	start := time.Now()
	report := &models.IngestionReport{RunID: uuid.New().String(), Source: source}
	log := idx.logger.With(zap.String("run_id", report.RunID))

	for i, row := range rows {
		outcome := idx.ingestRow(ctx, row)
		report.Add(outcome)
		switch outcome.Status {
		case models.StatusFailed:
			log.Warn("record failed", zap.Int("row", outcome.Row), zap.String("id", outcome.ID), zap.Error(outcome.Err))
		default:
			log.Debug("record processed", zap.Int("row", outcome.Row), zap.String("id", outcome.ID),
				zap.String("status", string(outcome.Status)))
		}
		if idx.progress != nil {
			idx.progress(i+1, len(rows))
		}
	}

	report.Duration = time.Since(start)
	log.Info("ingestion finished",
		zap.String("source", source),
		zap.Int("inserted", report.Inserted),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration))
	return report
}

func (idx *Indexer) ingestRow(ctx context.Context, row record.Row) models.IngestOutcome {
	out := models.IngestOutcome{Row: row.Num, ID: row.ID()}
	if out.ID != "" {
		exists, err := idx.index.Exists(ctx, out.ID)
		if err != nil {
			out.Status, out.Err = models.StatusFailed, err
			return out
		}
		if exists {
			out.Status = models.StatusSkipped
			return out
		}
	}

	doc, err := record.Normalize(row)
	if err != nil {
		out.Status, out.Err = models.StatusFailed, err
		return out
	}
	if err := idx.index.Insert(ctx, doc.ID, doc.Text, doc.Metadata); err != nil {
		out.Status, out.Err = models.StatusFailed, err
		return out
	}
	out.Status = models.StatusInserted
	return out
}

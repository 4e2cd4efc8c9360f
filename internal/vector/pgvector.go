package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint failure.
const uniqueViolation = "23505"

// PGVectorStore stores documents in a PostgreSQL table with a pgvector column
// named after the collection. Search uses cosine distance (<=>).
type PGVectorStore struct {
	db         *sql.DB
	dimensions int
	table      string
}

// NewPGVectorStore connects to dsn, enables the vector extension and creates
// the collection table if needed.
func NewPGVectorStore(ctx context.Context, dsn, collection string, dimensions int) (*PGVectorStore, error) {
	if dsn == "" {
		return nil, errors.New("pgvector: missing postgres dsn")
	}
	if !ValidCollection(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s := &PGVectorStore{db: db, dimensions: dimensions, table: collection}
	if err := s.initSchema(ctx, collection); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PGVectorStore) initSchema(ctx context.Context, collection string) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			dimensions INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			metadata JSONB NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.table, s.dimensions),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return checkDimensions(s.db,
		"INSERT INTO collections (name, dimensions) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
		"SELECT dimensions FROM collections WHERE name = $1", collection, s.dimensions)
}

// Type returns the store type identifier.
func (s *PGVectorStore) Type() string {
	return TypePGVector
}

// Has reports whether id is stored.
func (s *PGVectorStore) Has(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+s.table+` WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// Add inserts a new row.
func (s *PGVectorStore) Add(ctx context.Context, e Entry) error {
	if len(e.Vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(e.Vector), s.dimensions)
	}
	metadataJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+s.table+` (id, document, metadata, embedding) VALUES ($1, $2, $3, $4)`,
		e.ID, e.Document, string(metadataJSON), pgvector.NewVector(e.Vector),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// Search returns the k nearest rows by cosine distance.
func (s *PGVectorStore) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), s.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, metadata, embedding <=> $1 AS distance
		 FROM `+s.table+`
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(query), k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var metadataJSON []byte
		if err := rows.Scan(&h.ID, &h.Document, &metadataJSON, &h.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if err := json.Unmarshal(metadataJSON, &h.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", h.ID, err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Count returns the number of stored rows.
func (s *PGVectorStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.table).Scan(&n)
	return n, err
}

// Close closes the connection pool.
func (s *PGVectorStore) Close() error {
	return s.db.Close()
}

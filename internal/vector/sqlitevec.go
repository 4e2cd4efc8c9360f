package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// SQLiteVecStore keeps documents in a regular SQLite table and vectors in a
// sqlite-vec vec0 virtual table, both named after the collection.
type SQLiteVecStore struct {
	db         *sql.DB
	dimensions int
	docTable   string
	vecTable   string
}

// NewSQLiteVecStore opens or creates the database at dbPath and initializes the
// collection tables. Parent directories are created if they do not exist.
func NewSQLiteVecStore(dbPath, collection string, dimensions int) (*SQLiteVecStore, error) {
	if !ValidCollection(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteVecStore{
		db:         db,
		dimensions: dimensions,
		docTable:   collection + "_documents",
		vecTable:   collection + "_vectors",
	}
	if err := s.initSchema(collection); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteVecStore) initSchema(collection string) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		dimensions INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		metadata TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(id TEXT PRIMARY KEY, embedding float[%d]);
	`, s.docTable, s.vecTable, s.dimensions)
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return checkDimensions(s.db, "INSERT OR IGNORE INTO collections (name, dimensions) VALUES (?, ?)",
		"SELECT dimensions FROM collections WHERE name = ?", collection, s.dimensions)
}

// checkDimensions records the collection dimension on first use and rejects a
// different dimension later (e.g. after switching embedding provider).
func checkDimensions(db *sql.DB, insertQ, selectQ, collection string, dimensions int) error {
	if _, err := db.Exec(insertQ, collection, dimensions); err != nil {
		return err
	}
	var stored int
	if err := db.QueryRow(selectQ, collection).Scan(&stored); err != nil {
		return err
	}
	if stored != dimensions {
		return fmt.Errorf("%w: collection %q was created with %d dimensions, embedder produces %d",
			ErrDimensionMismatch, collection, stored, dimensions)
	}
	return nil
}

// Type returns the store type identifier.
func (s *SQLiteVecStore) Type() string {
	return TypeSQLiteVec
}

// Has reports whether id is stored.
func (s *SQLiteVecStore) Has(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM `+s.docTable+` WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add inserts the document row and its vector in one transaction.
func (s *SQLiteVecStore) Add(ctx context.Context, e Entry) error {
	if len(e.Vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(e.Vector), s.dimensions)
	}
	blob, err := sqlite_vec.SerializeFloat32(e.Vector)
	if err != nil {
		return fmt.Errorf("failed to serialize embedding: %w", err)
	}
	metadataJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO `+s.docTable+` (id, document, metadata) VALUES (?, ?, ?)`,
		e.ID, e.Document, string(metadataJSON),
	); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		return fmt.Errorf("failed to insert document: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO `+s.vecTable+` (id, embedding) VALUES (?, ?)`, e.ID, blob,
	); err != nil {
		return fmt.Errorf("failed to insert vector: %w", err)
	}
	return tx.Commit()
}

// Search runs a vec0 KNN query (L2 distance) and joins the stored documents.
func (s *SQLiteVecStore) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), s.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize query vector: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.distance, d.document, d.metadata
		FROM `+s.vecTable+` v
		JOIN `+s.docTable+` d ON d.id = v.id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var metadataJSON string
		if err := rows.Scan(&h.ID, &h.Distance, &h.Document, &metadataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &h.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", h.ID, err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Count returns the number of stored documents.
func (s *SQLiteVecStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+s.docTable).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteVecStore) Close() error {
	return s.db.Close()
}

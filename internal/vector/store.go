// Package vector stores embedded history documents and answers k-nearest-neighbor
// queries. Backends are sqlite-vec (default), an in-memory index and pgvector.
package vector

import (
	"context"
	"errors"
	"regexp"

	"github.com/hyperjump/rekishi/internal/models"
)

var (
	// ErrDuplicateID is returned when adding an id that is already stored.
	ErrDuplicateID = errors.New("id already exists")
	// ErrDimensionMismatch is returned when a vector does not match the store dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidCollection is returned for collection names that are not plain identifiers.
	ErrInvalidCollection = errors.New("invalid collection name")
)

// Entry is one embedded document to store.
type Entry struct {
	ID       string
	Document string
	Metadata models.Metadata
	Vector   []float32
}

// Hit is one nearest-neighbor result. Lower distance means more similar.
type Hit struct {
	ID       string
	Document string
	Metadata models.Metadata
	Distance float64
}

// Store persists entries and searches them by vector.
type Store interface {
	Has(ctx context.Context, id string) (bool, error)
	// Add stores a new entry. Existing ids are never overwritten.
	Add(ctx context.Context, e Entry) error
	// Search returns up to k hits ordered by ascending distance.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
	Count(ctx context.Context) (int64, error)
	Type() string
	Close() error
}

var collectionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidCollection reports whether name can be used as a table name.
func ValidCollection(name string) bool {
	return collectionName.MatchString(name)
}

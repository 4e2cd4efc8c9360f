package vector

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryStore is an in-memory brute-force store using cosine distance. When
// created with a path it loads from that file and saves back on Close.
type MemoryStore struct {
	dimensions int
	path       string
	entries    []Entry
	byID       map[string]int
	mu         sync.RWMutex
}

// memorySnapshot is the gob-encoded file layout.
type memorySnapshot struct {
	Dimensions int
	Entries    []Entry
}

// NewMemoryStore creates an in-memory store. An empty path disables persistence.
func NewMemoryStore(dimensions int, path string) (*MemoryStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	m := &MemoryStore{
		dimensions: dimensions,
		path:       path,
		byID:       make(map[string]int),
	}
	if err := m.Load(path); err != nil {
		return nil, err
	}
	return m, nil
}

// Type returns the store type identifier.
func (m *MemoryStore) Type() string {
	return TypeMemory
}

// Has reports whether id is stored.
func (m *MemoryStore) Has(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byID[id]
	return ok, nil
}

// Add stores a copy of e.
func (m *MemoryStore) Add(_ context.Context, e Entry) error {
	if len(e.Vector) != m.dimensions {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(e.Vector), m.dimensions)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[e.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	vec := make([]float32, m.dimensions)
	copy(vec, e.Vector)
	e.Vector = vec
	m.byID[e.ID] = len(m.entries)
	m.entries = append(m.entries, e)
	return nil
}

// Search returns the k entries closest to query by cosine distance.
// Ties keep insertion order.
func (m *MemoryStore) Search(_ context.Context, query []float32, k int) ([]Hit, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.entries) == 0 {
		return nil, nil
	}
	hits := make([]Hit, len(m.entries))
	for i, e := range m.entries {
		hits[i] = Hit{ID: e.ID, Document: e.Document, Metadata: e.Metadata, Distance: CosineDistance(query, e.Vector)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Count returns the number of stored entries.
func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.entries)), nil
}

// Save writes all entries to path. The directory is created if needed.
func (m *MemoryStore) Save(path string) error {
	if path == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(memorySnapshot{Dimensions: m.dimensions, Entries: m.entries}); err != nil {
		f.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load replaces the contents with the entries saved at path. A missing file
// leaves the store unchanged. Dimensions must match.
func (m *MemoryStore) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var snap memorySnapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}
	if snap.Dimensions != m.dimensions {
		return fmt.Errorf("%w: file has %d, store expects %d", ErrDimensionMismatch, snap.Dimensions, m.dimensions)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = snap.Entries
	m.byID = make(map[string]int, len(snap.Entries))
	for i, e := range snap.Entries {
		m.byID[e.ID] = i
	}
	return nil
}

// Close saves to the configured path, if any.
func (m *MemoryStore) Close() error {
	return m.Save(m.path)
}

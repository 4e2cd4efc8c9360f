package embedding

import (
	"context"

	"github.com/hyperjump/rekishi/pkg/utils"
)

// MockEmbedder is a deterministic feature-hashing embedder. Every term of the
// text adds weight to a bucket chosen by its hash, so texts that share words
// land close together. It needs no model and is used in tests and as the
// local fallback when ONNX Runtime is unavailable.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns a hashing embedder with the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 1 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns the unit-length hashed term vector of text.
func (e *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	emb := make([]float32, e.dimensions)
	// Bias keeps empty text from producing a zero vector.
	emb[0] = 0.01
	for _, term := range Terms(text) {
		h := HashString(term)
		bucket := 1 + h%(e.dimensions-1)
		sign := float32(1)
		if (h/(e.dimensions-1))%2 == 1 {
			sign = -1
		}
		emb[bucket] += sign
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

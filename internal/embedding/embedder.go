// Package embedding turns history document text into vectors. Providers are a
// local ONNX model, Azure OpenAI and Ollama; a deterministic hashing embedder
// backs tests and the local fallback.
package embedding

import (
	"context"
	"errors"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

var (
	// ErrNoEmbedding is returned when a provider answers without vectors.
	ErrNoEmbedding = errors.New("provider returned no embedding")
	// ErrCountMismatch is returned when a batch response has the wrong number of vectors.
	ErrCountMismatch = errors.New("embedding count mismatch")
)

// embedEach runs embed for every text in order, stopping at the first error.
func embedEach(ctx context.Context, texts []string, embed func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

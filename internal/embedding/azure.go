package embedding

import (
	"context"
	"errors"
	"fmt"
	"sort"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"golang.org/x/time/rate"
)

// AzureConfig configures an AzureEmbedder.
type AzureConfig struct {
	Endpoint   string
	APIVersion string
	APIKey     string
	Deployment string
	Dimensions int
	// RequestsPerSecond throttles calls to the deployment; zero disables throttling.
	RequestsPerSecond float64
}

// AzureEmbedder embeds text with an Azure OpenAI embedding deployment.
type AzureEmbedder struct {
	client     openaisdk.Client
	deployment string
	dimensions int
	limiter    *rate.Limiter
}

// NewAzureEmbedder creates an embedder for the given deployment. Endpoint and API key are required.
func NewAzureEmbedder(cfg AzureConfig) (*AzureEmbedder, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("azure: missing endpoint")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("azure: missing api key")
	}
	if cfg.Deployment == "" {
		return nil, errors.New("azure: missing deployment")
	}

	// Failures surface per record, so the SDK must not retry on its own.
	client := openaisdk.NewClient(
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &AzureEmbedder{
		client:     client,
		deployment: cfg.Deployment,
		dimensions: cfg.Dimensions,
		limiter:    limiter,
	}, nil
}

// Embed returns the embedding for a single text.
func (e *AzureEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in a single request, preserving input order.
func (e *AzureEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("azure embedding: %w", err)
	}

	params := openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openaisdk.EmbeddingModel(e.deployment),
	}
	if e.dimensions > 0 {
		params.Dimensions = param.NewOpt(int64(e.dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("azure embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoEmbedding
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(resp.Data), len(texts))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	out := make([][]float32, len(data))
	for i, d := range data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the configured embedding dimension.
func (e *AzureEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the SDK client holds no resources.
func (e *AzureEmbedder) Close() error {
	return nil
}

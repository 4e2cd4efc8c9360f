package embedding

import (
	"errors"
	"fmt"

	"github.com/hyperjump/rekishi/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrUnknownProvider is returned for an unsupported embedding provider name.
	ErrUnknownProvider = errors.New("unknown embedding provider")
	// ErrModelUnavailable is returned when the local ONNX model cannot be
	// loaded and fallback is not allowed.
	ErrModelUnavailable = errors.New("local embedding model unavailable")
)

// NewEmbedder builds the embedder selected by cfg.Provider. The local provider
// uses MockEmbedder instead of a missing ONNX model only when
// cfg.AllowFallback is set.
func NewEmbedder(cfg *config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case config.ProviderLocal, "":
		onnx, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
		if err != nil {
			if !cfg.AllowFallback {
				return nil, fmt.Errorf("%w: %s (set embedding.allow_fallback to use the hashing embedder): %v",
					ErrModelUnavailable, cfg.ModelPath, err)
			}
			logger.Warn("ONNX embedder unavailable, using hashing embedder",
				zap.String("model_path", cfg.ModelPath), zap.Error(err))
			return NewMockEmbedder(cfg.Dimensions), nil
		}
		return onnx, nil
	case config.ProviderAzure:
		az, err := NewAzureEmbedder(AzureConfig{
			Endpoint:          cfg.Azure.Endpoint,
			APIVersion:        cfg.Azure.APIVersion,
			APIKey:            cfg.Azure.APIKey,
			Deployment:        cfg.Azure.Deployment,
			Dimensions:        cfg.Azure.Dimensions,
			RequestsPerSecond: cfg.Azure.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		return NewCachedEmbedder(az, cfg.CacheSize), nil
	case config.ProviderOllama:
		ol, err := NewOllamaEmbedder(cfg.Ollama.Host, cfg.Ollama.Model, cfg.Ollama.Dimensions)
		if err != nil {
			return nil, err
		}
		return NewCachedEmbedder(ol, cfg.CacheSize), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

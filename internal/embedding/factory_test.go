package embedding

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/rekishi/internal/config"
)

func TestNewEmbedder_localMissingModel(t *testing.T) {
	cfg := &config.EmbeddingConfig{
		Provider:   config.ProviderLocal,
		ModelPath:  filepath.Join(t.TempDir(), "missing.onnx"),
		Dimensions: 384,
		MaxTokens:  16,
		CacheSize:  10,
	}
	e, err := NewEmbedder(cfg, nil)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %T %v", e, err)
	}
}

func TestNewEmbedder_localFallsBackToMock(t *testing.T) {
	cfg := &config.EmbeddingConfig{
		Provider:      config.ProviderLocal,
		ModelPath:     filepath.Join(t.TempDir(), "missing.onnx"),
		Dimensions:    32,
		MaxTokens:     16,
		CacheSize:     10,
		AllowFallback: true,
	}
	e, err := NewEmbedder(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if _, ok := e.(*MockEmbedder); !ok {
		t.Errorf("expected MockEmbedder fallback, got %T", e)
	}
	if e.Dimensions() != 32 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
}

func TestNewEmbedder_remoteProviders(t *testing.T) {
	cfg := &config.EmbeddingConfig{Provider: config.ProviderAzure, CacheSize: 10}
	if _, err := NewEmbedder(cfg, nil); err == nil {
		t.Error("azure without endpoint should fail")
	}

	cfg.Azure = config.AzureConfig{Endpoint: "https://example.openai.azure.com", APIKey: "k", Deployment: "d", Dimensions: 1536}
	e, err := NewEmbedder(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*CachedEmbedder); !ok || e.Dimensions() != 1536 {
		t.Errorf("azure: got %T dims=%d", e, e.Dimensions())
	}

	cfg = &config.EmbeddingConfig{
		Provider:  config.ProviderOllama,
		CacheSize: 10,
		Ollama:    config.OllamaConfig{Host: "http://localhost:11434", Model: "nomic-embed-text", Dimensions: 768},
	}
	e, err = NewEmbedder(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Dimensions() != 768 {
		t.Errorf("ollama dims = %d", e.Dimensions())
	}
}

func TestNewEmbedder_unknown(t *testing.T) {
	_, err := NewEmbedder(&config.EmbeddingConfig{Provider: "bogus"}, nil)
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

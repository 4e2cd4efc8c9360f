package config

// Storage backend names.
const (
	StoreSQLiteVec = "sqlite-vec"
	StoreMemory    = "memory"
	StorePGVector  = "pgvector"
)

// Embedding provider names.
const (
	ProviderLocal  = "local"
	ProviderAzure  = "azure"
	ProviderOllama = "ollama"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "browser_history"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = StoreSQLiteVec
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = ".rekishi/history.db"
	}
	if cfg.Storage.Collection == "" {
		cfg.Storage.Collection = DefaultCollection
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderLocal
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = ".rekishi/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Azure.APIVersion == "" {
		cfg.Embedding.Azure.APIVersion = "2024-02-01"
	}
	if cfg.Embedding.Azure.Deployment == "" {
		cfg.Embedding.Azure.Deployment = "text-embedding-3-small"
	}
	if cfg.Embedding.Azure.Dimensions == 0 {
		cfg.Embedding.Azure.Dimensions = 1536
	}
	if cfg.Embedding.Azure.RequestsPerSecond == 0 {
		cfg.Embedding.Azure.RequestsPerSecond = 5
	}
	if cfg.Embedding.Ollama.Host == "" {
		cfg.Embedding.Ollama.Host = "http://localhost:11434"
	}
	if cfg.Embedding.Ollama.Model == "" {
		cfg.Embedding.Ollama.Model = "nomic-embed-text"
	}
	if cfg.Embedding.Ollama.Dimensions == 0 {
		cfg.Embedding.Ollama.Dimensions = 768
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
}

// EmbeddingDimensions returns the vector size produced by the configured provider.
func (e *EmbeddingConfig) EmbeddingDimensions() int {
	switch e.Provider {
	case ProviderAzure:
		return e.Azure.Dimensions
	case ProviderOllama:
		return e.Ollama.Dimensions
	default:
		return e.Dimensions
	}
}

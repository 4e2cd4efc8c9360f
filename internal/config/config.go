// Package config provides configuration loading and structs for rekishi.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the vector store backend and where it lives.
type StorageConfig struct {
	// Type is one of "sqlite-vec", "memory" or "pgvector".
	Type        string `yaml:"type"`
	IndexPath   string `yaml:"index_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	Collection  string `yaml:"collection"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of "local", "azure" or "ollama".
	Provider      string       `yaml:"provider"`
	ModelPath     string       `yaml:"model_path"`
	Dimensions    int          `yaml:"dimensions"`
	MaxTokens     int          `yaml:"max_tokens"`
	CacheSize     int          `yaml:"cache_size"`
	// AllowFallback lets the local provider use the hashing embedder when the
	// ONNX model cannot be loaded. Its vectors are not comparable with the
	// model's, so an index must be built and queried with the same choice.
	AllowFallback bool         `yaml:"allow_fallback"`
	Azure         AzureConfig  `yaml:"azure"`
	Ollama        OllamaConfig `yaml:"ollama"`
}

// AzureConfig holds Azure OpenAI embedding settings.
type AzureConfig struct {
	Endpoint          string  `yaml:"endpoint"`
	APIVersion        string  `yaml:"api_version"`
	APIKey            string  `yaml:"api_key"`
	Deployment        string  `yaml:"deployment"`
	Dimensions        int     `yaml:"dimensions"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// OllamaConfig holds Ollama embedding settings.
type OllamaConfig struct {
	Host       string `yaml:"host"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// SearchConfig holds query settings.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// WatchConfig lists history export files that the watch command re-ingests on change.
type WatchConfig struct {
	Files []string `yaml:"files"`
}

// Environment variables that override file values.
const (
	EnvAzureEndpoint   = "AZURE_ENDPOINT"
	EnvAzureAPIVersion = "AZURE_API_VERSION"
	EnvAzureAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvAzureDeployment = "AZURE_EMBEDDING_DEPLOYMENT"
	EnvOllamaHost      = "OLLAMA_HOST"
	EnvPostgresDSN     = "REKISHI_PG_DSN"
	EnvProvider        = "REKISHI_EMBEDDING_PROVIDER"
	EnvDebug           = "REKISHI_DEBUG"
)

// Load reads and parses the config file at path, applies environment overrides
// and defaults, and expands paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	finish(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns the default configuration when
// the file does not exist. Relative paths are then resolved against the
// working directory.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = &Config{}
	dir, wdErr := os.Getwd()
	if wdErr != nil {
		dir = "."
	}
	finish(cfg, dir)
	return cfg, nil
}

func finish(cfg *Config, configDir string) {
	ApplyEnv(cfg)
	ApplyDefaults(cfg)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Watch.Files {
		cfg.Watch.Files[i] = expandPath(cfg.Watch.Files[i], configDir)
	}
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set are not overwritten.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides file values with non-empty environment variables.
func ApplyEnv(cfg *Config) {
	setString(&cfg.Embedding.Azure.Endpoint, EnvAzureEndpoint)
	setString(&cfg.Embedding.Azure.APIVersion, EnvAzureAPIVersion)
	setString(&cfg.Embedding.Azure.APIKey, EnvAzureAPIKey)
	setString(&cfg.Embedding.Azure.Deployment, EnvAzureDeployment)
	setString(&cfg.Embedding.Ollama.Host, EnvOllamaHost)
	setString(&cfg.Storage.PostgresDSN, EnvPostgresDSN)
	setString(&cfg.Embedding.Provider, EnvProvider)
	if v := os.Getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

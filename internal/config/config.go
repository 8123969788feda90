// Package config provides configuration loading and structs for the annai CLI and server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Vector     VectorConfig     `yaml:"vector"`
	Index      IndexConfig      `yaml:"index"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database, cloned repos, and generated docs.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	RepoCacheDir string `yaml:"repo_cache_dir"`
	OutputDir    string `yaml:"output_dir"`
}

// EmbeddingConfig holds embedding provider settings.
// Provider is one of "openai", "onnx", or "mock". API keys come from the
// environment, never from the YAML file.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BaseURL    string `yaml:"base_url"`
	ModelPath  string `yaml:"model_path"` // ONNX model file, used when provider is "onnx"
	MaxTokens  int    `yaml:"max_tokens"`
	APIKey     string `yaml:"-" env:"OPENAI_API_KEY"`
}

// CompletionConfig holds text-completion provider settings.
// Provider is one of "anthropic", "openai", "ollama", or "none". With "none",
// ask falls back to returning retrieved chunks without calling an LLM.
type CompletionConfig struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	MaxTokens       int    `yaml:"max_tokens"`
	BaseURL         string `yaml:"base_url"` // Ollama/OpenAI-compatible endpoint override
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`
}

// VectorConfig selects the similarity-index backend: "memory" or "qdrant".
type VectorConfig struct {
	Backend          string `yaml:"backend"`
	QdrantAddr       string `yaml:"qdrant_addr"`
	QdrantCollection string `yaml:"qdrant_collection"`
}

// IndexConfig holds chunking and retrieval settings.
type IndexConfig struct {
	ChunkLines   int   `yaml:"chunk_lines"`
	ChunkOverlap int   `yaml:"chunk_overlap"`
	MaxFileBytes int64 `yaml:"max_file_bytes"`
	MaxReadBytes int   `yaml:"max_read_bytes"`
	TopK         int   `yaml:"top_k"`
}

// WatchConfig holds snapshot watch settings for locally analyzed directories.
type WatchConfig struct {
	Enabled  bool `yaml:"enabled"`
	Debounce int  `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, applies defaults, expands
// storage paths, and overlays environment variables (API keys, loaded from
// .env when present). A missing file is not an error: defaults plus
// environment are used, so the CLI works without any config at all.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.RepoCacheDir = expandPath(cfg.Storage.RepoCacheDir, configDir)
	cfg.Storage.OutputDir = expandPath(cfg.Storage.OutputDir, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
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

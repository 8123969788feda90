package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".annai/annai.db"
	}
	if cfg.Storage.RepoCacheDir == "" {
		cfg.Storage.RepoCacheDir = ".annai/repos"
	}
	if cfg.Storage.OutputDir == "" {
		cfg.Storage.OutputDir = ".annai/docs"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		switch cfg.Embedding.Provider {
		case "onnx":
			cfg.Embedding.Dimensions = 384
		default:
			cfg.Embedding.Dimensions = 1536
		}
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Completion.Provider == "" {
		cfg.Completion.Provider = "anthropic"
	}
	if cfg.Completion.Model == "" {
		switch cfg.Completion.Provider {
		case "ollama":
			cfg.Completion.Model = "llama3.1:8b"
		case "openai":
			cfg.Completion.Model = "gpt-4o-mini"
		default:
			cfg.Completion.Model = "claude-3-5-sonnet-latest"
		}
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 1400
	}
	if cfg.Completion.Provider == "ollama" && cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.Vector.Backend == "" {
		cfg.Vector.Backend = "memory"
	}
	if cfg.Vector.QdrantAddr == "" {
		cfg.Vector.QdrantAddr = "localhost:6334"
	}
	if cfg.Vector.QdrantCollection == "" {
		cfg.Vector.QdrantCollection = "annai_chunks"
	}
	if cfg.Index.ChunkLines == 0 {
		cfg.Index.ChunkLines = 200
	}
	if cfg.Index.ChunkOverlap == 0 {
		cfg.Index.ChunkOverlap = 30
	}
	if cfg.Index.MaxFileBytes == 0 {
		cfg.Index.MaxFileBytes = 2_000_000
	}
	if cfg.Index.MaxReadBytes == 0 {
		cfg.Index.MaxReadBytes = 200_000
	}
	if cfg.Index.TopK == 0 {
		cfg.Index.TopK = 6
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 400
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProviderConfig selects and configures the embedding and chat model provider.
// Credentials are never stored here; APIKeyEnv names the process environment
// variable the key is read from.
type ProviderConfig struct {
	Type           string  `yaml:"type"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	ChatModel      string  `yaml:"chat_model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	Temperature    float64 `yaml:"temperature"`
	BatchSize      int     `yaml:"batch_size"`
	BaseURL        string  `yaml:"base_url,omitempty"`
}

// ChunkingConfig configures how extracted text is split into chunks.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// RetrievalConfig configures similarity search over the chunk index.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// HistoryConfig bounds the per-session question history.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	SessionTTLSecs int    `yaml:"session_ttl_secs"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Provider  ProviderConfig  `yaml:"provider"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	History   HistoryConfig   `yaml:"history"`
	Server    ServerConfig    `yaml:"server"`
	LogLevel  string          `yaml:"log_level"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Provider: ProviderConfig{
			Type:           "googleai",
			APIKeyEnv:      "GEMINI_API_KEY",
			ChatModel:      "gemini-1.5-pro-latest",
			EmbeddingModel: "embedding-001",
			Temperature:    0.3,
			BatchSize:      32,
		},
		Chunking:  ChunkingConfig{Size: 1000, Overlap: 200},
		Retrieval: RetrievalConfig{TopK: 3},
		History:   HistoryConfig{MaxEntries: 5},
		Server:    ServerConfig{Addr: ":8080", SessionTTLSecs: 1800},
		LogLevel:  "info",
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Provider.Type == "" {
		cfg.Provider.Type = "googleai"
	}
	switch cfg.Provider.Type {
	case "googleai":
		if cfg.Provider.APIKeyEnv == "" {
			cfg.Provider.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.Provider.ChatModel == "" {
			cfg.Provider.ChatModel = "gemini-1.5-pro-latest"
		}
		if cfg.Provider.EmbeddingModel == "" {
			cfg.Provider.EmbeddingModel = "embedding-001"
		}
	case "openai":
		if cfg.Provider.APIKeyEnv == "" {
			cfg.Provider.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Provider.ChatModel == "" {
			cfg.Provider.ChatModel = "gpt-4o-mini"
		}
		if cfg.Provider.EmbeddingModel == "" {
			cfg.Provider.EmbeddingModel = "text-embedding-3-small"
		}
	}
	if cfg.Provider.Temperature == 0 {
		cfg.Provider.Temperature = 0.3
	}
	if cfg.Provider.BatchSize == 0 {
		cfg.Provider.BatchSize = 32
	}
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = 1000
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = min(200, cfg.Chunking.Size/5)
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = 5
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.SessionTTLSecs == 0 {
		cfg.Server.SessionTTLSecs = 1800
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should return defaults when the file does not exist", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "googleai", cfg.Provider.Type)
		assert.Equal(t, "GEMINI_API_KEY", cfg.Provider.APIKeyEnv)
		assert.Equal(t, 1000, cfg.Chunking.Size)
		assert.Equal(t, 200, cfg.Chunking.Overlap)
		assert.Equal(t, 3, cfg.Retrieval.TopK)
		assert.Equal(t, 5, cfg.History.MaxEntries)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, "info", cfg.LogLevel)
	})
	t.Run("Should parse a full config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
provider:
  type: openai
  api_key_env: MY_KEY
  chat_model: gpt-4o
  embedding_model: text-embedding-3-large
  temperature: 0.7
  batch_size: 16
chunking:
  size: 800
  overlap: 150
retrieval:
  top_k: 5
history:
  max_entries: 10
server:
  addr: ":9090"
  session_ttl_secs: 600
log_level: debug
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "openai", cfg.Provider.Type)
		assert.Equal(t, "MY_KEY", cfg.Provider.APIKeyEnv)
		assert.Equal(t, "gpt-4o", cfg.Provider.ChatModel)
		assert.Equal(t, 0.7, cfg.Provider.Temperature)
		assert.Equal(t, 16, cfg.Provider.BatchSize)
		assert.Equal(t, 800, cfg.Chunking.Size)
		assert.Equal(t, 150, cfg.Chunking.Overlap)
		assert.Equal(t, 5, cfg.Retrieval.TopK)
		assert.Equal(t, 10, cfg.History.MaxEntries)
		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.Equal(t, 600, cfg.Server.SessionTTLSecs)
		assert.Equal(t, "debug", cfg.LogLevel)
	})
	t.Run("Should fill provider defaults by type", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("provider:\n  type: openai\n"), 0o644))
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "OPENAI_API_KEY", cfg.Provider.APIKeyEnv)
		assert.Equal(t, "gpt-4o-mini", cfg.Provider.ChatModel)
		assert.Equal(t, "text-embedding-3-small", cfg.Provider.EmbeddingModel)
	})
	t.Run("Should default the overlap for a custom chunk size", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("chunking:\n  size: 500\n"), 0o644))
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 500, cfg.Chunking.Size)
		assert.Equal(t, 100, cfg.Chunking.Overlap)
	})
	t.Run("Should reject malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("provider: [\n"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestSave(t *testing.T) {
	t.Run("Should round-trip through save and load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
		cfg := defaultConfig()
		cfg.Provider.ChatModel = "gemini-1.5-flash"
		cfg.Retrieval.TopK = 7
		require.NoError(t, Save(path, cfg))
		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)
	})
}

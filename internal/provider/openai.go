package provider

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"docqa/internal/config"
)

func newOpenAI(cfg config.ProviderConfig) (*Bundle, error) {
	key, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}
	opts := []openai.Option{
		openai.WithToken(key),
		openai.WithModel(cfg.ChatModel),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(cfg.BatchSize),
		embeddings.WithStripNewLines(true),
	)
	if err != nil {
		return nil, fmt.Errorf("construct openai embedder: %w", err)
	}
	return &Bundle{
		Embedder:    &classifiedEmbedder{impl: embedder},
		Synthesizer: &chatSynthesizer{model: client, temperature: cfg.Temperature},
	}, nil
}

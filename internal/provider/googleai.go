package provider

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/googleai"

	"docqa/internal/config"
)

func newGoogleAI(ctx context.Context, cfg config.ProviderConfig) (*Bundle, error) {
	key, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(key),
		googleai.WithDefaultModel(cfg.ChatModel),
		googleai.WithDefaultEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize googleai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(cfg.BatchSize),
		embeddings.WithStripNewLines(true),
	)
	if err != nil {
		return nil, fmt.Errorf("construct googleai embedder: %w", err)
	}
	return &Bundle{
		Embedder:    &classifiedEmbedder{impl: embedder},
		Synthesizer: &chatSynthesizer{model: client, temperature: cfg.Temperature},
	}, nil
}

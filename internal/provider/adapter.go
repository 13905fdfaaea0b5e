package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"docqa/internal/domain"
)

// classifiedEmbedder wraps a langchaingo embedder so every failure carries
// the embedding error class and batch results are count-checked.
type classifiedEmbedder struct {
	impl embeddings.Embedder
}

func (e *classifiedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbedding, len(vectors), len(texts))
	}
	return vectors, nil
}

func (e *classifiedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	return vector, nil
}

// chatSynthesizer adapts a langchaingo chat model to the Synthesizer
// interface. The rendered prompt goes out as a single human message.
type chatSynthesizer struct {
	model       llms.Model
	temperature float64
}

func (s *chatSynthesizer) Answer(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	resp, err := s.model.GenerateContent(ctx, messages, llms.WithTemperature(s.temperature))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSynthesis, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", domain.ErrSynthesis)
	}
	answer := strings.TrimSpace(resp.Choices[0].Content)
	if answer == "" {
		return "", fmt.Errorf("%w: model returned an empty completion", domain.ErrSynthesis)
	}
	return answer, nil
}

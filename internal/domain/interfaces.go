package domain

import (
	"context"
	"time"
)

// Chunk is an overlapping slice of extracted document text used for indexing.
type Chunk struct {
	Text string
	Page int // 1-based source page, 0 when attribution is unknown
	Seq  int // insertion order within the document
}

// SourceChunk is a retrieved chunk attached to an answer.
type SourceChunk struct {
	Text  string
	Page  int
	Score float64
}

// AnswerResult is the outcome of a single question round.
type AnswerResult struct {
	Answer  string
	Sources []SourceChunk
}

// HistoryEntry records one answered question.
type HistoryEntry struct {
	Question string
	Answer   string
	AskedAt  time.Time
}

// Embedder converts text into vectors in a fixed-dimension space.
// Identical input must always yield the identical vector.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Synthesizer produces an answer from a fully rendered grounding prompt.
type Synthesizer interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

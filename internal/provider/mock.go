package provider

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
	"sync/atomic"
)

// DefaultMockDimension is the vector width of the mock embedder.
const DefaultMockDimension = 64

// NewMock builds a fully offline bundle for tests and air-gapped runs.
func NewMock() *Bundle {
	return &Bundle{
		Embedder:    NewMockEmbedder(DefaultMockDimension),
		Synthesizer: &MockSynthesizer{},
	}
}

// MockEmbedder is a deterministic offline embedder. Tokens are hashed into a
// fixed number of buckets and the bucket counts are L2-normalized, so
// identical text always embeds identically and shared vocabulary raises
// similarity. That is enough for retrieval to behave sensibly without a live
// provider.
type MockEmbedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	docCalls     atomic.Int64
}

// NewMockEmbedder creates a mock embedder with the given vector width.
func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = DefaultMockDimension
	}
	return &MockEmbedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    mockStopwords(),
	}
}

func (e *MockEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.docCalls.Add(1)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *MockEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

// DocumentCalls reports how many batch embedding calls have been made.
func (e *MockEmbedder) DocumentCalls() int {
	return int(e.docCalls.Load())
}

// Dimension returns the vector width.
func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dimension)
	for _, tok := range e.tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if _, isStop := e.stopwords[tok]; isStop {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimension]++
	}
	norm := 0.0
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

// MockSynthesizer answers by echoing the question it finds in the prompt.
type MockSynthesizer struct{}

func (s *MockSynthesizer) Answer(_ context.Context, prompt string) (string, error) {
	for _, line := range strings.Split(prompt, "\n") {
		if q, ok := strings.CutPrefix(line, "Question: "); ok {
			return "Mock answer for: " + strings.TrimSpace(q), nil
		}
	}
	return "Mock answer.", nil
}

func mockStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "for", "to", "of", "in",
		"on", "at", "by", "with", "as", "is", "are", "was", "were", "be",
		"it", "this", "that", "these", "those", "from", "what", "which",
		"who", "how", "does", "do", "about",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

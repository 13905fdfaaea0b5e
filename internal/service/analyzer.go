// Package service owns the per-session state machine: one loaded document,
// the answer currently on display, and a bounded question history.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"docqa/internal/domain"
	"docqa/internal/ingest"
	"docqa/internal/prompt"
	"docqa/internal/vectorindex"
)

// DefaultMaxHistory bounds how many answered questions a session retains.
const DefaultMaxHistory = 5

// Summary reports the outcome of an ingestion to presentation layers.
type Summary struct {
	DocHashPrefix string
	PageCount     int
	ChunkCount    int
	Oversized     bool
	Reused        bool
}

// Analyzer serializes all operations of one logical user session. Ingest and
// Ask never run concurrently with each other; a failed ingestion leaves the
// previous document untouched.
type Analyzer struct {
	mu          sync.Mutex
	pipeline    *ingest.Pipeline
	embedder    domain.Embedder
	synthesizer domain.Synthesizer
	topK        int
	maxHistory  int
	logger      *log.Logger

	current    *ingest.DocumentSession
	lastAnswer *domain.AnswerResult
	history    []domain.HistoryEntry
}

// New builds an Analyzer around shared pipeline collaborators.
func New(
	pipeline *ingest.Pipeline,
	embedder domain.Embedder,
	synthesizer domain.Synthesizer,
	topK, maxHistory int,
	logger *log.Logger,
) (*Analyzer, error) {
	if pipeline == nil {
		return nil, errors.New("service: pipeline is required")
	}
	if embedder == nil {
		return nil, errors.New("service: embedder is required")
	}
	if synthesizer == nil {
		return nil, errors.New("service: synthesizer is required")
	}
	if topK <= 0 {
		topK = vectorindex.DefaultTopK
	}
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{
		pipeline:    pipeline,
		embedder:    embedder,
		synthesizer: synthesizer,
		topK:        topK,
		maxHistory:  maxHistory,
		logger:      logger,
	}, nil
}

// Ingest loads a document into the session. Bytes with the same fingerprint
// as the loaded document are a no-op reported through Summary.Reused; a
// different document replaces the session wholesale.
func (a *Analyzer) Ingest(ctx context.Context, data []byte) (Summary, error) {
	return a.IngestWithProgress(ctx, data, nil)
}

// IngestWithProgress is Ingest with phase reporting for interactive front ends.
func (a *Analyzer) IngestWithProgress(ctx context.Context, data []byte, onProgress ingest.ProgressFunc) (Summary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	hash := ingest.Fingerprint(data)
	if a.current != nil && a.current.DocHash == hash {
		a.logger.Debug("document unchanged, skipping ingestion", "doc", ingest.ShortHash(hash))
		return a.summaryLocked(true), nil
	}
	session, err := a.pipeline.Run(ctx, data, onProgress)
	if err != nil {
		return Summary{}, err
	}
	a.current = session
	return a.summaryLocked(false), nil
}

// Ask answers a question against the loaded document: embed the question,
// retrieve the most similar chunks, synthesize a grounded answer, and record
// the round in history.
func (a *Analyzer) Ask(ctx context.Context, question string) (domain.AnswerResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.AnswerResult{}, domain.ErrEmptyQuestion
	}
	if a.current == nil {
		return domain.AnswerResult{}, domain.ErrNoDocument
	}
	vector, err := a.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("embed question: %w", err)
	}
	matches := a.current.Index.Search(vector, a.topK)
	sources := make([]domain.SourceChunk, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, domain.SourceChunk{Text: m.Chunk.Text, Page: m.Chunk.Page, Score: m.Score})
	}
	rendered, err := prompt.Build(question, sources)
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("%w: %v", domain.ErrSynthesis, err)
	}
	answer, err := a.synthesizer.Answer(ctx, rendered)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	result := domain.AnswerResult{Answer: answer, Sources: sources}
	a.lastAnswer = &result
	a.history = append(a.history, domain.HistoryEntry{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})
	if len(a.history) > a.maxHistory {
		a.history = a.history[len(a.history)-a.maxHistory:]
	}
	a.logger.Debug("question answered", "doc", ingest.ShortHash(a.current.DocHash), "sources", len(sources))
	return result, nil
}

// History returns the retained question rounds, most recent first.
func (a *Analyzer) History() []domain.HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.HistoryEntry, 0, len(a.history))
	for i := len(a.history) - 1; i >= 0; i-- {
		out = append(out, a.history[i])
	}
	return out
}

// ClearHistory drops all retained question rounds.
func (a *Analyzer) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// ClearAnswer resets the answer on display. History is unaffected.
func (a *Analyzer) ClearAnswer() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastAnswer = nil
}

// LastAnswer returns the answer currently on display, if any.
func (a *Analyzer) LastAnswer() (domain.AnswerResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastAnswer == nil {
		return domain.AnswerResult{}, false
	}
	return *a.lastAnswer, true
}

// ShowHistoryAnswer re-surfaces a past answer as the one on display. The
// index counts most-recent-first, matching History. It reports whether the
// entry existed.
func (a *Analyzer) ShowHistoryAnswer(i int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.history) {
		return false
	}
	entry := a.history[len(a.history)-1-i]
	a.lastAnswer = &domain.AnswerResult{Answer: entry.Answer}
	return true
}

// Ready reports whether a document is loaded and queryable.
func (a *Analyzer) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current != nil
}

// Current returns the loaded document's summary.
func (a *Analyzer) Current() (Summary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return Summary{}, false
	}
	return a.summaryLocked(false), true
}

func (a *Analyzer) summaryLocked(reused bool) Summary {
	return Summary{
		DocHashPrefix: ingest.ShortHash(a.current.DocHash),
		PageCount:     a.current.PageCount,
		ChunkCount:    a.current.ChunkCount,
		Oversized:     a.current.Oversized,
		Reused:        reused,
	}
}

// Package ingest turns raw PDF bytes into an immutable, searchable
// document session.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/pdftext"
	"docqa/internal/vectorindex"
)

// Phase names the stage an ingestion run is in.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseExtracting Phase = "extracting"
	PhaseChunking   Phase = "chunking"
	PhaseEmbedding  Phase = "embedding"
	PhaseReady      Phase = "ready"
	PhaseFailed     Phase = "failed"
)

// OversizeLimit is the soft document size limit in bytes. Bigger uploads
// still process; the resulting session just carries a warning flag.
const OversizeLimit = 10 << 20

// ProgressFunc observes phase transitions during a run.
type ProgressFunc func(phase Phase)

// DocumentSession is the in-memory product of one successful ingestion.
// It never changes after Run returns it; a new document replaces it wholesale.
type DocumentSession struct {
	DocHash    string
	PageCount  int
	ChunkCount int
	Size       int64
	Oversized  bool
	Index      *vectorindex.Index
	IngestedAt time.Time
}

// Pipeline runs extract, chunk, embed, index as one atomic unit.
type Pipeline struct {
	extractor *pdftext.Extractor
	splitter  *chunker.Splitter
	embedder  domain.Embedder
	batchSize int
	logger    *log.Logger
}

// NewPipeline wires the ingestion stages. batchSize bounds how many chunk
// texts go to the embedder per call.
func NewPipeline(
	extractor *pdftext.Extractor,
	splitter *chunker.Splitter,
	embedder domain.Embedder,
	batchSize int,
	logger *log.Logger,
) (*Pipeline, error) {
	if extractor == nil {
		return nil, errors.New("ingest: extractor is required")
	}
	if splitter == nil {
		return nil, errors.New("ingest: splitter is required")
	}
	if embedder == nil {
		return nil, errors.New("ingest: embedder is required")
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Run executes the full ingestion. Failure at any stage discards all partial
// work, so the caller keeps whatever session it already had. Run never
// retries; the user re-invokes on transient provider failures.
func (p *Pipeline) Run(ctx context.Context, data []byte, onProgress ProgressFunc) (*DocumentSession, error) {
	report := func(phase Phase) {
		if onProgress != nil {
			onProgress(phase)
		}
	}
	hash := Fingerprint(data)
	oversized := int64(len(data)) > OversizeLimit
	if oversized {
		p.logger.Warn("document exceeds the soft size limit",
			"doc", ShortHash(hash), "bytes", len(data), "limit", OversizeLimit)
	}
	report(PhaseExtracting)
	doc, err := p.extractor.Extract(data)
	if err != nil {
		report(PhaseFailed)
		return nil, err
	}
	report(PhaseChunking)
	chunks, err := p.splitter.Split(doc)
	if err != nil {
		report(PhaseFailed)
		return nil, err
	}
	if len(chunks) == 0 {
		report(PhaseFailed)
		return nil, fmt.Errorf("%w: document produced no chunks", domain.ErrExtraction)
	}
	report(PhaseEmbedding)
	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		report(PhaseFailed)
		return nil, err
	}
	index, err := vectorindex.Build(chunks, vectors)
	if err != nil {
		report(PhaseFailed)
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	session := &DocumentSession{
		DocHash:    hash,
		PageCount:  doc.PageCount,
		ChunkCount: len(chunks),
		Size:       int64(len(data)),
		Oversized:  oversized,
		Index:      index,
		IngestedAt: time.Now(),
	}
	p.logger.Info("document ingested",
		"doc", ShortHash(hash), "pages", doc.PageCount, "chunks", len(chunks))
	report(PhaseReady)
	return session, nil
}

func (p *Pipeline) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := p.embedder.EmbedDocuments(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
				domain.ErrEmbedding, len(batch), end-start)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

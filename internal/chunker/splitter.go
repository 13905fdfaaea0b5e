package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"docqa/internal/domain"
	"docqa/internal/pdftext"
)

// Splitter cuts extracted text into overlapping chunks using the recursive
// character strategy: paragraphs first, then lines, then words, then a hard
// cut. Splitting is deterministic for identical input and settings.
type Splitter struct {
	size     int
	overlap  int
	splitter textsplitter.RecursiveCharacter
}

// New validates the chunking settings and builds a splitter.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, errors.New("chunker: size must be greater than zero")
	}
	if overlap < 0 {
		return nil, errors.New("chunker: overlap cannot be negative")
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than size %d", overlap, size)
	}
	return &Splitter{
		size:    size,
		overlap: overlap,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		),
	}, nil
}

// Split chunks each page independently so every chunk keeps an exact page
// attribution. Seq numbers run across the whole document in page order.
func (s *Splitter) Split(doc pdftext.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, page := range doc.Pages {
		segments, err := s.SplitText(page.Text)
		if err != nil {
			return nil, fmt.Errorf("chunker: split page %d: %w", page.Number, err)
		}
		for _, segment := range segments {
			chunks = append(chunks, domain.Chunk{Text: segment, Page: page.Number, Seq: len(chunks)})
		}
	}
	return chunks, nil
}

// SplitText splits plain text into overlapping segments of at most the
// configured size. Whitespace-only input yields no segments.
func (s *Splitter) SplitText(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	segments, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	return out, nil
}

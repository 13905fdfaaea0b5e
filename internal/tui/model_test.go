package tui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"docqa/internal/domain"
	"docqa/internal/ingest"
	"docqa/internal/service"
)

func TestUserErrorMessage(t *testing.T) {
	t.Run("Should tell the user to load a document first", func(t *testing.T) {
		msg := userErrorMessage(domain.ErrNoDocument)
		assert.Equal(t, "Load a document first: /load <file.pdf>", msg)
	})
	t.Run("Should tell the user to type a question", func(t *testing.T) {
		msg := userErrorMessage(domain.ErrEmptyQuestion)
		assert.Equal(t, "Type a question first.", msg)
	})
	t.Run("Should surface extraction failures with detail", func(t *testing.T) {
		err := fmt.Errorf("%w: no extractable text layer", domain.ErrExtraction)
		msg := userErrorMessage(err)
		assert.Contains(t, msg, "Could not read that PDF")
		assert.Contains(t, msg, "no extractable text layer")
	})
	t.Run("Should fall back to a generic error line", func(t *testing.T) {
		msg := userErrorMessage(errors.New("boom"))
		assert.Equal(t, "Error: boom", msg)
	})
}

func TestPhaseLabel(t *testing.T) {
	assert.Equal(t, "Extracting text...", phaseLabel(ingest.PhaseExtracting))
	assert.Equal(t, "Splitting into chunks...", phaseLabel(ingest.PhaseChunking))
	assert.Equal(t, "Generating embeddings...", phaseLabel(ingest.PhaseEmbedding))
	assert.Equal(t, "Document ready.", phaseLabel(ingest.PhaseReady))
	assert.Equal(t, "Processing failed.", phaseLabel(ingest.PhaseFailed))
}

func TestDocLine(t *testing.T) {
	t.Run("Should show the hash prefix and counts", func(t *testing.T) {
		line := docLine(service.Summary{DocHashPrefix: "abcdef123456", PageCount: 4, ChunkCount: 17})
		assert.Contains(t, line, "abcdef123456")
		assert.Contains(t, line, "4 pages")
		assert.Contains(t, line, "17 chunks")
		assert.NotContains(t, line, "10MB")
	})
	t.Run("Should flag oversized documents", func(t *testing.T) {
		line := docLine(service.Summary{DocHashPrefix: "abcdef123456", Oversized: true})
		assert.Contains(t, line, "over 10MB")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))
	assert.Equal(t, "lo...", truncate("longer than five", 5))
	assert.Equal(t, "lo", truncate("longer", 2))
	assert.Equal(t, "héllø ...", truncate("héllø wörld", 9), "must cut on rune boundaries")
}

func TestHighlightBestSentence(t *testing.T) {
	t.Run("Should keep every sentence in the output", func(t *testing.T) {
		text := "The pump runs daily. The warranty lasts a year. Filters need monthly checks."
		out := highlightBestSentence(text, "How long does the warranty last?")
		assert.Contains(t, out, "The pump runs daily.")
		assert.Contains(t, out, "The warranty lasts a year.")
		assert.Contains(t, out, "Filters need monthly checks.")
	})
	t.Run("Should pass empty text through", func(t *testing.T) {
		assert.Equal(t, "  ", highlightBestSentence("  ", "question"))
	})
}

func TestTokenOverlapScore(t *testing.T) {
	t.Run("Should count distinct shared tokens", func(t *testing.T) {
		q := toTokenSet("warranty period for the pump")
		score := tokenOverlapScore(q, "The warranty covers the pump and the pump housing.")
		assert.Equal(t, 3, score)
	})
	t.Run("Should score unrelated text zero", func(t *testing.T) {
		q := toTokenSet("warranty period")
		assert.Equal(t, 0, tokenOverlapScore(q, "Completely different subject matter."))
	})
}

package pdftext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/pdftest"
)

func TestExtract(t *testing.T) {
	extractor := NewExtractor()

	t.Run("Should extract text from every page", func(t *testing.T) {
		data := pdftest.Bytes(t,
			"The kraken sleeps beneath the waves.",
			"Volcanic basalt forms hexagonal columns.",
		)
		doc, err := extractor.Extract(data)
		require.NoError(t, err)
		assert.Equal(t, 2, doc.PageCount)
		require.Len(t, doc.Pages, 2)
		assert.Equal(t, 1, doc.Pages[0].Number)
		assert.Contains(t, doc.Pages[0].Text, "kraken")
		assert.Equal(t, 2, doc.Pages[1].Number)
		assert.Contains(t, doc.Pages[1].Text, "basalt")
	})
	t.Run("Should join pages in order", func(t *testing.T) {
		data := pdftest.Bytes(t, "First page marker.", "Second page marker.")
		doc, err := extractor.Extract(data)
		require.NoError(t, err)
		text := doc.Text()
		first := strings.Index(text, "First")
		second := strings.Index(text, "Second")
		require.GreaterOrEqual(t, first, 0)
		require.GreaterOrEqual(t, second, 0)
		assert.Less(t, first, second)
	})
	t.Run("Should keep multi-line page content", func(t *testing.T) {
		data := pdftest.Bytes(t, "Opening line of the page.\nClosing line of the page.")
		doc, err := extractor.Extract(data)
		require.NoError(t, err)
		require.Len(t, doc.Pages, 1)
		assert.Contains(t, doc.Pages[0].Text, "Opening")
		assert.Contains(t, doc.Pages[0].Text, "Closing")
	})
	t.Run("Should fail on empty input", func(t *testing.T) {
		_, err := extractor.Extract(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrExtraction)
	})
	t.Run("Should fail on bytes that are not a pdf", func(t *testing.T) {
		_, err := extractor.Extract([]byte("definitely not a pdf document"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrExtraction)
	})
	t.Run("Should fail on a truncated pdf", func(t *testing.T) {
		data := pdftest.Bytes(t, "Content that will be cut off mid stream.")
		_, err := extractor.Extract(data[:len(data)/3])
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrExtraction)
	})
}

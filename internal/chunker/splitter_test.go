package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/pdftext"
)

func TestNew(t *testing.T) {
	t.Run("Should reject a non-positive size", func(t *testing.T) {
		_, err := New(0, 0)
		require.Error(t, err)
	})
	t.Run("Should reject a negative overlap", func(t *testing.T) {
		_, err := New(100, -1)
		require.Error(t, err)
	})
	t.Run("Should reject overlap equal to or above size", func(t *testing.T) {
		_, err := New(100, 100)
		require.Error(t, err)
	})
	t.Run("Should accept zero overlap", func(t *testing.T) {
		_, err := New(100, 0)
		require.NoError(t, err)
	})
}

func TestSplitText(t *testing.T) {
	t.Run("Should return nothing for whitespace input", func(t *testing.T) {
		s, err := New(100, 20)
		require.NoError(t, err)
		segments, err := s.SplitText("  \n\t ")
		require.NoError(t, err)
		assert.Empty(t, segments)
	})
	t.Run("Should keep short input as a single segment", func(t *testing.T) {
		s, err := New(100, 20)
		require.NoError(t, err)
		segments, err := s.SplitText("one short paragraph")
		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, "one short paragraph", segments[0])
	})
	t.Run("Should keep every segment within the configured size", func(t *testing.T) {
		s, err := New(50, 10)
		require.NoError(t, err)
		text := strings.Repeat("alpha beta gamma delta epsilon ", 40)
		segments, err := s.SplitText(text)
		require.NoError(t, err)
		require.Greater(t, len(segments), 1)
		for _, segment := range segments {
			assert.LessOrEqual(t, len(segment), 50)
		}
	})
	t.Run("Should cut words longer than the size", func(t *testing.T) {
		s, err := New(50, 10)
		require.NoError(t, err)
		segments, err := s.SplitText(strings.Repeat("x", 120))
		require.NoError(t, err)
		require.Greater(t, len(segments), 1)
		for _, segment := range segments {
			assert.LessOrEqual(t, len(segment), 50)
		}
	})
	t.Run("Should be deterministic for identical input", func(t *testing.T) {
		s, err := New(50, 10)
		require.NoError(t, err)
		text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
		first, err := s.SplitText(text)
		require.NoError(t, err)
		second, err := s.SplitText(text)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
	t.Run("Should reconstruct breakless input from overlap-stripped segments", func(t *testing.T) {
		s, err := New(50, 10)
		require.NoError(t, err)
		text := strings.Repeat("abcdefg", 18)[:120]
		segments, err := s.SplitText(text)
		require.NoError(t, err)
		require.Len(t, segments, 3)
		rebuilt := segments[0]
		for _, segment := range segments[1:] {
			rebuilt += segment[10:]
		}
		assert.Equal(t, text, rebuilt)
	})
	t.Run("Should keep every word somewhere in the output", func(t *testing.T) {
		s, err := New(60, 12)
		require.NoError(t, err)
		words := make([]string, 80)
		for i := range words {
			words[i] = fmt.Sprintf("word%03d", i)
		}
		segments, err := s.SplitText(strings.Join(words, " "))
		require.NoError(t, err)
		joined := strings.Join(segments, " ")
		for _, w := range words {
			assert.Contains(t, joined, w)
		}
	})
}

func TestSplit(t *testing.T) {
	t.Run("Should attribute every chunk to its page", func(t *testing.T) {
		s, err := New(60, 12)
		require.NoError(t, err)
		doc := pdftext.Document{
			PageCount: 3,
			Pages: []pdftext.Page{
				{Number: 1, Text: strings.Repeat("first page words here. ", 10)},
				{Number: 2, Text: ""},
				{Number: 3, Text: strings.Repeat("third page words here. ", 10)},
			},
		}
		chunks, err := s.Split(doc)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)
		pages := map[int]bool{}
		for i, c := range chunks {
			assert.Equal(t, i, c.Seq)
			pages[c.Page] = true
		}
		assert.True(t, pages[1])
		assert.False(t, pages[2], "blank pages produce no chunks")
		assert.True(t, pages[3])
	})
	t.Run("Should return nothing for an empty document", func(t *testing.T) {
		s, err := New(60, 12)
		require.NoError(t, err)
		chunks, err := s.Split(pdftext.Document{})
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

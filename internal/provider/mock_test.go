package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestMockEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("Should embed identical text identically", func(t *testing.T) {
		e := NewMockEmbedder(64)
		first, err := e.EmbedQuery(ctx, "zebra migration routes in winter")
		require.NoError(t, err)
		second, err := e.EmbedQuery(ctx, "zebra migration routes in winter")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
	t.Run("Should produce unit-length vectors", func(t *testing.T) {
		e := NewMockEmbedder(64)
		v, err := e.EmbedQuery(ctx, "zebra migration routes in winter")
		require.NoError(t, err)
		require.Len(t, v, 64)
		assert.InDelta(t, 1.0, dotProduct(v, v), 1e-6)
	})
	t.Run("Should match batch embedding for the same text", func(t *testing.T) {
		e := NewMockEmbedder(64)
		single, err := e.EmbedQuery(ctx, "zebra migration routes in winter")
		require.NoError(t, err)
		batch, err := e.EmbedDocuments(ctx, []string{"zebra migration routes in winter"})
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.Equal(t, single, batch[0])
	})
	t.Run("Should score shared vocabulary above disjoint vocabulary", func(t *testing.T) {
		e := NewMockEmbedder(64)
		query, err := e.EmbedQuery(ctx, "zebra migration routes in winter")
		require.NoError(t, err)
		related, err := e.EmbedQuery(ctx, "zebra migration patterns")
		require.NoError(t, err)
		unrelated, err := e.EmbedQuery(ctx, "quarterly revenue accounting")
		require.NoError(t, err)
		assert.Greater(t, dotProduct(query, related), dotProduct(query, unrelated))
	})
	t.Run("Should count document batches", func(t *testing.T) {
		e := NewMockEmbedder(64)
		assert.Equal(t, 0, e.DocumentCalls())
		_, err := e.EmbedDocuments(ctx, []string{"one", "two"})
		require.NoError(t, err)
		_, err = e.EmbedDocuments(ctx, []string{"three"})
		require.NoError(t, err)
		assert.Equal(t, 2, e.DocumentCalls())
	})
	t.Run("Should default a non-positive dimension", func(t *testing.T) {
		e := NewMockEmbedder(0)
		assert.Equal(t, DefaultMockDimension, e.Dimension())
	})
}

func TestMockSynthesizer(t *testing.T) {
	ctx := context.Background()
	s := &MockSynthesizer{}

	t.Run("Should echo the question found in the prompt", func(t *testing.T) {
		answer, err := s.Answer(ctx, "context lines\nQuestion: What is basalt?\nmore lines")
		require.NoError(t, err)
		assert.Equal(t, "Mock answer for: What is basalt?", answer)
	})
	t.Run("Should fall back when no question line exists", func(t *testing.T) {
		answer, err := s.Answer(ctx, "no structured content here")
		require.NoError(t, err)
		assert.Equal(t, "Mock answer.", answer)
	})
}

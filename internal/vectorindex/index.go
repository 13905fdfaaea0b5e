// Package vectorindex holds an immutable in-memory similarity index over
// document chunks.
package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"docqa/internal/domain"
)

// DefaultTopK is used when a caller asks for a non-positive result count.
const DefaultTopK = 3

// Match captures a similarity search result.
type Match struct {
	Chunk domain.Chunk
	Score float64
}

// Index is a brute-force cosine index. Vectors are L2-normalized at build
// time so similarity reduces to a dot product. An Index never changes after
// Build; re-ingestion builds a fresh one.
type Index struct {
	dimension int
	vectors   [][]float32
	chunks    []domain.Chunk
}

// Build validates and normalizes the chunk vectors into a new index.
func Build(chunks []domain.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("vectorindex: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(vectors) == 0 {
		return &Index{}, nil
	}
	dimension := len(vectors[0])
	if dimension == 0 {
		return nil, errors.New("vectorindex: empty embedding vector")
	}
	idx := &Index{
		dimension: dimension,
		vectors:   make([][]float32, len(vectors)),
		chunks:    append([]domain.Chunk(nil), chunks...),
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vectorindex: vector %d has dimension %d, want %d", i, len(v), dimension)
		}
		idx.vectors[i] = normalize(v)
	}
	return idx, nil
}

// Len reports the number of indexed chunks.
func (x *Index) Len() int { return len(x.chunks) }

// Dimension reports the embedding width, 0 for an empty index.
func (x *Index) Dimension() int { return x.dimension }

// Search returns the topK most similar chunks, best first. Equal scores keep
// insertion order. Searching an empty index yields no matches.
func (x *Index) Search(query []float32, topK int) []Match {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(x.vectors) == 0 {
		return nil
	}
	q := normalize(query)
	matches := make([]Match, 0, len(x.vectors))
	for i := range x.vectors {
		matches = append(matches, Match{Chunk: x.chunks[i], Score: dot(x.vectors[i], q)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

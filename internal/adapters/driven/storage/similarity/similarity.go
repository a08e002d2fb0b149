// Package similarity scores chunk embeddings against a query vector by exact
// cosine similarity and keeps the best matches in a deterministic order.
package similarity

import (
	"container/heap"
	"math"
	"sort"

	"github.com/ragtube/ragtube-cli/internal/core/domain"
	"github.com/ragtube/ragtube-cli/internal/core/ports/driven"
)

// Norm returns the Euclidean length of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b, whose lengths must match.
// queryNorm is Norm(a), precomputed by callers scoring many vectors.
// A zero vector has similarity 0 with everything.
func Cosine(a []float32, queryNorm float64, b []float32) float64 {
	var dot, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if queryNorm == 0 || nb == 0 {
		return 0
	}
	return dot / (queryNorm * math.Sqrt(nb))
}

// better reports whether x ranks ahead of y: higher score first, then lower chunk ID.
func better(x, y driven.ChunkMatch) bool {
	if x.Score != y.Score {
		return x.Score > y.Score
	}
	return x.Chunk.ID < y.Chunk.ID
}

// Ranker keeps the top K matches offered to it.
type Ranker struct {
	k     int
	worst matchHeap
}

// NewRanker returns a ranker keeping at most k matches.
func NewRanker(k int) *Ranker {
	return &Ranker{k: k}
}

// Offer considers a match for the result set.
func (r *Ranker) Offer(m driven.ChunkMatch) {
	if r.k <= 0 {
		return
	}
	if len(r.worst) < r.k {
		heap.Push(&r.worst, m)
		return
	}
	if better(m, r.worst[0]) {
		r.worst[0] = m
		heap.Fix(&r.worst, 0)
	}
}

// Results returns the kept matches ordered by score descending, then chunk ID ascending.
func (r *Ranker) Results() []driven.ChunkMatch {
	out := make([]driven.ChunkMatch, len(r.worst))
	copy(out, r.worst)
	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}

// Score ranks chunks against query and returns the best k.
// Chunks whose embedding length differs from the query are reported with
// domain.ErrDimensionMismatch.
func Score(query []float32, chunks []domain.Chunk, k int) ([]driven.ChunkMatch, error) {
	qn := Norm(query)
	r := NewRanker(k)
	for i := range chunks {
		if len(chunks[i].Embedding) != len(query) {
			return nil, domain.ErrDimensionMismatch
		}
		r.Offer(driven.ChunkMatch{Chunk: chunks[i], Score: Cosine(query, qn, chunks[i].Embedding)})
	}
	return r.Results(), nil
}

// matchHeap is a min-heap with the worst kept match at the root.
type matchHeap []driven.ChunkMatch

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *matchHeap) Push(x any) { *h = append(*h, x.(driven.ChunkMatch)) }

func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	m := old[n-1]
	*h = old[:n-1]
	return m
}

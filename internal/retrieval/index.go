package retrieval

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/alexanderramin/ember/internal/app"
	"github.com/alexanderramin/ember/internal/domain"
	"github.com/alexanderramin/ember/internal/embedding"
	"github.com/alexanderramin/ember/internal/repository"
	"github.com/google/uuid"
)

const (
	DefaultTopK          = 5
	DefaultMinSimilarity = 0.35
)

// Match pairs a strategy with its cosine similarity to the query.
type Match struct {
	Document   domain.StrategyDocument
	Similarity float64
}

// Index is a brute-force in-memory vector index over the strategy corpus.
// Vectors are normalized on load so the dot product equals cosine similarity.
// Search takes only the read lock and is safe for unbounded concurrent use.
type Index struct {
	embedder embedding.Embedder
	store    repository.StrategyRepo

	topK          int
	minSimilarity float64

	mu   sync.RWMutex
	docs []domain.StrategyDocument
}

type Option func(*Index)

func WithTopK(k int) Option {
	return func(ix *Index) {
		if k > 0 {
			ix.topK = k
		}
	}
}

func WithMinSimilarity(min float64) Option {
	return func(ix *Index) { ix.minSimilarity = min }
}

// NewIndex creates an empty index. Call Load to populate it from the store.
func NewIndex(embedder embedding.Embedder, store repository.StrategyRepo, opts ...Option) *Index {
	ix := &Index{
		embedder:      embedder,
		store:         store,
		topK:          DefaultTopK,
		minSimilarity: DefaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Load replaces the in-memory corpus with the persisted strategy documents.
func (ix *Index) Load(ctx context.Context) error {
	docs, err := ix.store.List(ctx)
	if err != nil {
		return fmt.Errorf("loading strategies: %w", err)
	}
	for i := range docs {
		docs[i].Embedding = Normalize(docs[i].Embedding)
	}

	ix.mu.Lock()
	ix.docs = docs
	ix.mu.Unlock()
	return nil
}

// Len returns the number of indexed strategies.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Documents returns a copy of the indexed strategies.
func (ix *Index) Documents() []domain.StrategyDocument {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]domain.StrategyDocument(nil), ix.docs...)
}

// Add embeds, persists, and indexes new strategy documents. Documents already
// embedded are stored as given. Stops at the first failure; earlier documents
// stay stored.
func (ix *Index) Add(ctx context.Context, docs []domain.StrategyDocument) ([]domain.StrategyDocument, error) {
	added := make([]domain.StrategyDocument, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		if len(d.Embedding) == 0 {
			vec, err := ix.embedder.EmbedDocument(ctx, d.Title+"\n"+d.Text)
			if err != nil {
				return added, app.DependencyError("strategies.add", err)
			}
			d.Embedding = vec
		}
		d.Embedding = Normalize(d.Embedding)
		if err := ix.store.Create(ctx, &d); err != nil {
			return added, fmt.Errorf("storing strategy %q: %w", d.Title, err)
		}

		ix.mu.Lock()
		ix.docs = append(ix.docs, d)
		ix.mu.Unlock()
		added = append(added, d)
	}
	return added, nil
}

// Retrieve returns the strategies most relevant to the analysis.
func (ix *Index) Retrieve(ctx context.Context, a *domain.BurnoutAnalysis) ([]Match, error) {
	return ix.Search(ctx, BuildQuery(a))
}

// Search embeds query and returns up to topK matches at or above the
// similarity floor, best first. Equal similarities favor newer documents.
func (ix *Index) Search(ctx context.Context, query string) ([]Match, error) {
	vec, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, app.DependencyError("retrieve", err)
	}
	q := Normalize(vec)

	ix.mu.RLock()
	h := &matchHeap{}
	for _, d := range ix.docs {
		if len(d.Embedding) != len(q) {
			continue
		}
		score := dotProduct(q, d.Embedding)
		if score < ix.minSimilarity {
			continue
		}
		m := Match{Document: d, Similarity: score}
		if h.Len() < ix.topK {
			heap.Push(h, m)
		} else if worse((*h)[0], m) {
			(*h)[0] = m
			heap.Fix(h, 0)
		}
	}
	ix.mu.RUnlock()

	out := make([]Match, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Match)
	}
	return out, nil
}

// Documents extracts the strategy documents from matches, preserving order.
func Documents(matches []Match) []domain.StrategyDocument {
	out := make([]domain.StrategyDocument, len(matches))
	for i, m := range matches {
		out[i] = m.Document
	}
	return out
}

// worse reports whether a ranks below b.
func worse(a, b Match) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity < b.Similarity
	}
	return a.Document.CreatedAt.Before(b.Document.CreatedAt)
}

// matchHeap keeps the weakest retained match at the root.
type matchHeap []Match

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *matchHeap) Push(x any)        { *h = append(*h, x.(Match)) }
func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Normalize scales v to unit length. A zero vector stays zero.
func Normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	norm = math.Sqrt(norm)
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

package knowledgebase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

var (
	ErrNoEmbedder        = errors.New("no embedder configured")
	ErrEmbeddingMismatch = errors.New("embedding count does not match document count")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrUnsupportedFilter = errors.New("unsupported filter type")
)

// Entry is one indexed chunk
type Entry struct {
	ID       int64
	Vector   []float32
	Document schema.Document
}

// MemoryStore is an in-process vector store using cosine similarity.
// Searches are brute force over every entry.
type MemoryStore struct {
	embedder  embeddings.Embedder
	snowflake *snowflake.Node

	mu      sync.RWMutex
	entries []Entry
	dim     int
}

var _ vectorstores.VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. The embedder may be nil if every
// call passes vectorstores.WithEmbedder.
func NewMemoryStore(embedder embeddings.Embedder) (*MemoryStore, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &MemoryStore{
		embedder:  embedder,
		snowflake: node,
	}, nil
}

// AddDocuments embeds docs and stores them. Either every document is
// stored or none is.
func (s *MemoryStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	opts := s.options(options)
	if opts.Embedder == nil {
		return nil, ErrNoEmbedder
	}

	if opts.Deduplicater != nil {
		filtered := make([]schema.Document, 0, len(docs))
		for _, d := range docs {
			if !opts.Deduplicater(ctx, d) {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}
	if len(docs) == 0 {
		return []string{}, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.PageContent
	}

	vectors, err := opts.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingMismatch, len(vectors), len(docs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dim
	for i, v := range vectors {
		if dim == 0 {
			dim = len(v)
		}
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("%w: document %d has %d, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}

	ids := make([]string, len(docs))
	added := make([]Entry, len(docs))
	for i, d := range docs {
		id := s.snowflake.Generate()
		ids[i] = id.String()
		added[i] = Entry{ID: id.Int64(), Vector: vectors[i], Document: d}
	}

	s.entries = append(s.entries, added...)
	s.dim = dim
	return ids, nil
}

// SimilaritySearch returns up to numDocuments documents ordered by
// descending cosine similarity to query. Filters may be a
// map[string]any matched by equality against document metadata.
func (s *MemoryStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := s.options(options)
	if opts.Embedder == nil {
		return nil, ErrNoEmbedder
	}
	if numDocuments <= 0 {
		return []schema.Document{}, nil
	}

	var filter map[string]any
	if opts.Filters != nil {
		f, ok := opts.Filters.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedFilter, opts.Filters)
		}
		filter = f
	}

	qv, err := opts.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dim != 0 && len(qv) != s.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(qv), s.dim)
	}

	type scored struct {
		idx   int
		score float32
	}
	hits := make([]scored, 0, len(s.entries))
	for i, e := range s.entries {
		if !matches(e.Document.Metadata, filter) {
			continue
		}
		score := cosine(qv, e.Vector)
		if opts.ScoreThreshold > 0 && score < opts.ScoreThreshold {
			continue
		}
		hits = append(hits, scored{idx: i, score: score})
	}

	// stable keeps insertion order among equal scores
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})
	if len(hits) > numDocuments {
		hits = hits[:numDocuments]
	}

	out := make([]schema.Document, len(hits))
	for i, h := range hits {
		doc := s.entries[h.idx].Document
		doc.Score = h.score
		out[i] = doc
	}
	return out, nil
}

// Len returns the number of indexed chunks
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Dimension returns the vector size, or 0 when empty
func (s *MemoryStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

func (s *MemoryStore) options(options []vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{Embedder: s.embedder}
	for _, o := range options {
		o(&opts)
	}
	return opts
}

func matches(metadata, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

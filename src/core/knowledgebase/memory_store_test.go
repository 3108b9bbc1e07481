package knowledgebase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"ragchat/src/core/knowledgebase"
)

// keywordEmbedder maps each text to counts of a fixed vocabulary.
type keywordEmbedder struct {
	vocab []string
	calls int
	err   error
}

var _ embeddings.Embedder = (*keywordEmbedder)(nil)

func (k *keywordEmbedder) vector(text string) []float32 {
	v := make([]float32, len(k.vocab))
	for i, w := range k.vocab {
		v[i] = float32(strings.Count(strings.ToLower(text), w))
	}
	return v
}

func (k *keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	k.calls++
	if k.err != nil {
		return nil, k.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = k.vector(t)
	}
	return out, nil
}

func (k *keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if k.err != nil {
		return nil, k.err
	}
	return k.vector(text), nil
}

func newEmbedder() *keywordEmbedder {
	return &keywordEmbedder{vocab: []string{"cat", "dog", "fish"}}
}

func docs(texts ...string) []schema.Document {
	out := make([]schema.Document, len(texts))
	for i, t := range texts {
		out[i] = schema.Document{PageContent: t, Metadata: map[string]any{"n": i}}
	}
	return out
}

func TestMemoryStore_SimilaritySearch(t *testing.T) {
	ctx := context.Background()
	store, err := knowledgebase.NewMemoryStore(newEmbedder())
	require.NoError(t, err)

	ids, err := store.AddDocuments(ctx, docs("cat cat", "dog", "fish fish fish", "cat dog"))
	require.NoError(t, err)
	require.Len(t, ids, 4)
	assert.Equal(t, 4, store.Len())
	assert.Equal(t, 3, store.Dimension())

	tests := []struct {
		name  string
		query string
		k     int
		opts  []vectorstores.Option
		want  []string
	}{
		{name: "top match first", query: "cat", k: 2, want: []string{"cat cat", "cat dog"}},
		{name: "k larger than index", query: "dog", k: 10, want: []string{"dog", "cat dog", "cat cat", "fish fish fish"}},
		{name: "zero k", query: "cat", k: 0, want: []string{}},
		{
			name:  "score threshold",
			query: "fish",
			k:     4,
			opts:  []vectorstores.Option{vectorstores.WithScoreThreshold(0.5)},
			want:  []string{"fish fish fish"},
		},
		{
			name:  "metadata filter",
			query: "cat",
			k:     4,
			opts:  []vectorstores.Option{vectorstores.WithFilters(map[string]any{"n": 1})},
			want:  []string{"dog"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.SimilaritySearch(ctx, tt.query, tt.k, tt.opts...)
			require.NoError(t, err)

			contents := make([]string, len(got))
			for i, d := range got {
				contents[i] = d.PageContent
			}
			assert.Equal(t, tt.want, contents)
		})
	}
}

func TestMemoryStore_ScoresDescending(t *testing.T) {
	ctx := context.Background()
	store, err := knowledgebase.NewMemoryStore(newEmbedder())
	require.NoError(t, err)
	_, err = store.AddDocuments(ctx, docs("cat", "cat dog", "cat dog fish"))
	require.NoError(t, err)

	got, err := store.SimilaritySearch(ctx, "cat", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
	assert.GreaterOrEqual(t, got[1].Score, got[2].Score)
}

func TestMemoryStore_AddDocumentsFailureLeavesStoreEmpty(t *testing.T) {
	emb := newEmbedder()
	emb.err = errors.New("quota exceeded")
	store, err := knowledgebase.NewMemoryStore(emb)
	require.NoError(t, err)

	_, err = store.AddDocuments(context.Background(), docs("cat", "dog"))
	assert.ErrorIs(t, err, emb.err)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_Deduplicater(t *testing.T) {
	store, err := knowledgebase.NewMemoryStore(newEmbedder())
	require.NoError(t, err)

	seen := map[string]bool{}
	dedup := vectorstores.WithDeduplicater(func(_ context.Context, d schema.Document) bool {
		if seen[d.PageContent] {
			return true
		}
		seen[d.PageContent] = true
		return false
	})

	ids, err := store.AddDocuments(context.Background(), docs("cat", "cat", "dog"), dedup)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()

	store, err := knowledgebase.NewMemoryStore(nil)
	require.NoError(t, err)
	_, err = store.AddDocuments(ctx, docs("cat"))
	assert.ErrorIs(t, err, knowledgebase.ErrNoEmbedder)

	// an embedder passed per call overrides the missing default
	_, err = store.AddDocuments(ctx, docs("cat"), vectorstores.WithEmbedder(newEmbedder()))
	require.NoError(t, err)

	_, err = store.SimilaritySearch(ctx, "cat", 1, vectorstores.WithEmbedder(newEmbedder()), vectorstores.WithFilters("bad"))
	assert.ErrorIs(t, err, knowledgebase.ErrUnsupportedFilter)

	other := &keywordEmbedder{vocab: []string{"cat"}}
	_, err = store.SimilaritySearch(ctx, "cat", 1, vectorstores.WithEmbedder(other))
	assert.ErrorIs(t, err, knowledgebase.ErrDimensionMismatch)
}

func TestMemoryStore_Retriever(t *testing.T) {
	ctx := context.Background()
	store, err := knowledgebase.NewMemoryStore(newEmbedder())
	require.NoError(t, err)
	_, err = store.AddDocuments(ctx, docs("cat", "dog", "fish", "cat fish", "dog fish"))
	require.NoError(t, err)

	var r schema.Retriever = vectorstores.ToRetriever(store, 4)
	got, err := r.GetRelevantDocuments(ctx, "fish")
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, "fish", got[0].PageContent)
}

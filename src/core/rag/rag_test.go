package rag_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"ragchat/src/core/ingest"
	"ragchat/src/core/knowledgebase"
	"ragchat/src/core/rag"
	"ragchat/src/fsutil"
)

// recordingModel returns a fixed answer and keeps every prompt it saw.
type recordingModel struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

var _ llms.Model = (*recordingModel)(nil)

func (m *recordingModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		for _, p := range msg.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				m.prompts = append(m.prompts, tc.Text)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, opts...)
}

type staticRetriever struct {
	docs []schema.Document
	err  error
}

var _ schema.Retriever = staticRetriever{}

func (r staticRetriever) GetRelevantDocuments(context.Context, string) ([]schema.Document, error) {
	return r.docs, r.err
}

func TestGenerator_Prompt(t *testing.T) {
	retriever := staticRetriever{docs: []schema.Document{
		{PageContent: "Paris is the capital of France."},
		{PageContent: "France is in Europe."},
	}}
	g := rag.NewGenerator(retriever, &recordingModel{})

	got, err := g.Prompt(context.Background(), "What is the capital?", "Human: hi\nAI: hello")
	require.NoError(t, err)

	want := "Start a Friendly conversation with the user\n" +
		"Answer the following question.\n" +
		"underline the main answer.\n" +
		"\n" +
		"Paris is the capital of France.\n\nFrance is in Europe.\n" +
		"History:Human: hi\nAI: hello\n" +
		"Human: What is the capital?\n" +
		"AI: Let's think about this step-by-step:\n"
	assert.Equal(t, want, got)
}

func TestGenerator_PromptEmptyHistory(t *testing.T) {
	g := rag.NewGenerator(staticRetriever{}, &recordingModel{})

	got, err := g.Prompt(context.Background(), "", "")
	require.NoError(t, err)
	assert.Contains(t, got, "\nHistory:\nHuman: \nAI: ")
}

func TestGenerator_Generate(t *testing.T) {
	tests := []struct {
		name      string
		retriever staticRetriever
		model     *recordingModel
		want      string
		wantErr   bool
		prompts   int
	}{
		{
			name:      "answer returned verbatim",
			retriever: staticRetriever{docs: []schema.Document{{PageContent: "ctx"}}},
			model:     &recordingModel{answer: "  <u>42</u>\n"},
			want:      "  <u>42</u>\n",
			prompts:   1,
		},
		{
			name:      "retrieval failure skips model",
			retriever: staticRetriever{err: errors.New("embedding quota")},
			model:     &recordingModel{answer: "unused"},
			wantErr:   true,
			prompts:   0,
		},
		{
			name:      "model failure",
			retriever: staticRetriever{},
			model:     &recordingModel{err: errors.New("rate limited")},
			wantErr:   true,
			prompts:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := rag.NewGenerator(tt.retriever, tt.model, rag.WithCallOptions(llms.WithTemperature(0)))
			got, err := g.Generate(context.Background(), "q", "")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Len(t, tt.model.prompts, tt.prompts)
		})
	}
}

func vocabEmbedder(vocab ...string) embeddings.Embedder {
	client := embeddings.EmbedderClientFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			v := make([]float32, len(vocab))
			for j, w := range vocab {
				v[j] = float32(strings.Count(strings.ToLower(text), w))
			}
			out[i] = v
		}
		return out, nil
	})
	e, err := embeddings.NewEmbedder(client)
	if err != nil {
		panic(err)
	}
	return e
}

func TestPipeline_Build(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"cats.txt":  "cats purr. cats sleep.",
		"dogs.txt":  "dogs bark.",
		"fish.txt":  "fish swim.",
		"birds.txt": "birds fly.",
		"mixed.txt": "cats and dogs.",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	loader, err := ingest.NewDirectoryLoader(fsutil.NewLocalFileStore(), dir, nil)
	require.NoError(t, err)

	model := &recordingModel{answer: "Cats purr."}
	p := &rag.Pipeline{
		Loader:   loader,
		Splitter: ingest.NewSplitter(0, 0),
		Embedder: vocabEmbedder("cat", "dog", "fish", "bird"),
		Model:    model,
		TopK:     2,
	}

	g, err := p.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, knowledgebase.IndexStats{Documents: 5, Chunks: 5}, g.Stats())

	answer, err := g.Generate(context.Background(), "what do cats do?", "")
	require.NoError(t, err)
	assert.Equal(t, "Cats purr.", answer)

	require.Len(t, model.prompts, 1)
	prompt := model.prompts[0]
	assert.Contains(t, prompt, "cats purr. cats sleep.")
	assert.Contains(t, prompt, "cats and dogs.")
	assert.NotContains(t, prompt, "fish swim.")
	assert.NotContains(t, prompt, "birds fly.")
}

func TestPipeline_BuildMissingDirectory(t *testing.T) {
	loader, err := ingest.NewDirectoryLoader(fsutil.NewLocalFileStore(), filepath.Join(t.TempDir(), "missing"), nil)
	require.NoError(t, err)

	p := &rag.Pipeline{
		Loader:   loader,
		Splitter: ingest.NewSplitter(0, 0),
		Embedder: vocabEmbedder("x"),
		Model:    &recordingModel{},
	}
	_, err = p.Build(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPipeline_BuildEmbeddingFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	loader, err := ingest.NewDirectoryLoader(fsutil.NewLocalFileStore(), dir, nil)
	require.NoError(t, err)

	boom := errors.New("401 unauthorized")
	failing, err := embeddings.NewEmbedder(embeddings.EmbedderClientFunc(
		func(context.Context, []string) ([][]float32, error) { return nil, boom },
	))
	require.NoError(t, err)

	p := &rag.Pipeline{
		Loader:   loader,
		Splitter: ingest.NewSplitter(0, 0),
		Embedder: failing,
		Model:    &recordingModel{},
	}
	_, err = p.Build(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPipeline_BuildEmptyDirectory(t *testing.T) {
	loader, err := ingest.NewDirectoryLoader(fsutil.NewLocalFileStore(), t.TempDir(), nil)
	require.NoError(t, err)

	model := &recordingModel{answer: "no idea"}
	p := &rag.Pipeline{
		Loader:   loader,
		Splitter: ingest.NewSplitter(0, 0),
		Embedder: vocabEmbedder("x"),
		Model:    model,
	}
	g, err := p.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, g.Stats().Chunks)

	answer, err := g.Generate(context.Background(), "anything?", "")
	require.NoError(t, err)
	assert.Equal(t, "no idea", answer)
}

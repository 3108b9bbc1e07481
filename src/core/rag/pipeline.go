package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/tmc/langchaingo/vectorstores"

	"ragchat/src/core/ingest"
	"ragchat/src/core/knowledgebase"
	"ragchat/src/log"
)

// Pipeline wires the components needed to build a Generator.
type Pipeline struct {
	Loader   documentloaders.Loader
	Splitter textsplitter.TextSplitter
	Embedder embeddings.Embedder
	Model    llms.Model
	TopK     int

	// CallOptions are passed to every completion call.
	CallOptions []llms.CallOption

	// Callbacks receives retriever events; may be nil.
	Callbacks callbacks.Handler
}

// Build loads and splits the documents, embeds every chunk into a new
// in-memory index and returns a generator over it. Any failure aborts the
// build.
func (p *Pipeline) Build(ctx context.Context) (*Generator, error) {
	start := time.Now()

	chunks, err := p.Loader.LoadAndSplit(ctx, p.Splitter)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	if len(chunks) == 0 {
		log.Info("No documents found, answers will have no context")
	}

	store, err := knowledgebase.NewMemoryStore(p.Embedder)
	if err != nil {
		return nil, err
	}
	if _, err := store.AddDocuments(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to index documents: %w", err)
	}

	topK := p.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	retriever := vectorstores.ToRetriever(store, topK)
	retriever.CallbacksHandler = p.Callbacks

	stats := knowledgebase.IndexStats{Documents: ingest.CountSources(chunks), Chunks: store.Len()}
	log.Info("Index built",
		"documents", stats.Documents,
		"chunks", stats.Chunks,
		"dimension", store.Dimension(),
		"topK", topK,
		"elapsed", time.Since(start).String(),
	)

	return NewGenerator(retriever, p.Model, WithStats(stats), WithCallOptions(p.CallOptions...)), nil
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"ragchat/src/core/ingest"
	"ragchat/src/core/knowledgebase"
	"ragchat/src/core/rag"
	"ragchat/src/fsutil"
	"ragchat/src/infrastructure/integrations"
)

func newLoader() (*ingest.DirectoryLoader, error) {
	return ingest.NewDirectoryLoader(
		fsutil.NewLocalFileStore(),
		viper.GetString("ingest.dir"),
		stringList("ingest.extensions"),
	)
}

func newEmbedder() (embeddings.Embedder, error) {
	return integrations.NewEmbedder(integrations.EmbeddingConfig{
		Provider:  viper.GetString("embedding.provider"),
		APIKey:    viper.GetString("embedding.api_key"),
		BaseURL:   viper.GetString("embedding.base_url"),
		Model:     viper.GetString("embedding.model"),
		ProjectID: viper.GetInt("embedding.project_id"),
		BatchSize: viper.GetInt("embedding.batch_size"),
		OllamaURL: viper.GetString("ollama.url"),
	})
}

// newPipeline reads the configuration and creates every external client.
// No network calls are made until Build.
func newPipeline() (*rag.Pipeline, error) {
	loader, err := newLoader()
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder()
	if err != nil {
		return nil, err
	}

	handler := integrations.NewLogHandler()
	model, err := integrations.NewLLM(integrations.LLMConfig{
		Provider:  viper.GetString("llm.provider"),
		APIKey:    viper.GetString("llm.api_key"),
		BaseURL:   viper.GetString("llm.base_url"),
		Model:     viper.GetString("llm.model"),
		OllamaURL: viper.GetString("ollama.url"),
	}, handler)
	if err != nil {
		return nil, err
	}

	var callOpts []llms.CallOption
	if viper.IsSet("llm.temperature") {
		callOpts = append(callOpts, llms.WithTemperature(viper.GetFloat64("llm.temperature")))
	}

	return &rag.Pipeline{
		Loader:      loader,
		Splitter:    ingest.NewSplitter(viper.GetInt("ingest.chunk_size"), viper.GetInt("ingest.chunk_overlap")),
		Embedder:    embedder,
		Model:       model,
		TopK:        viper.GetInt("rag.top_k"),
		CallOptions: callOpts,
		Callbacks:   handler,
	}, nil
}

// initializer defers client construction so configuration errors surface
// as a failed initialization instead of a failed start.
func initializer() knowledgebase.Initializer {
	return func(ctx context.Context) (knowledgebase.Generator, error) {
		p, err := newPipeline()
		if err != nil {
			return nil, fmt.Errorf("failed to configure pipeline: %w", err)
		}
		gen, err := p.Build(ctx)
		if err != nil {
			return nil, err
		}
		return gen, nil
	}
}

// stringList reads a list that may also be given as a comma separated string.
func stringList(key string) []string {
	var out []string
	for _, v := range viper.GetStringSlice(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

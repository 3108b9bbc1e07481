package integrations

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"ragchat/src/infrastructure/integrations/ollama"
	"ragchat/src/infrastructure/integrations/openai"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	// ProviderPrem is only valid for embeddings
	ProviderPrem   = "prem"
)

var (
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrMissingProjectID = errors.New("missing project id")
)

// LLMConfig selects and configures the chat completion provider
type LLMConfig struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	OllamaURL string
}

// EmbeddingConfig selects and configures the embedding provider
type EmbeddingConfig struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	ProjectID int
	BatchSize int
	OllamaURL string
}

// NewLLM builds the chat model for cfg.Provider.
func NewLLM(cfg LLMConfig, handler callbacks.Handler) (llms.Model, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		llm, err := openai.NewChatModel(openai.ChatConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}, handler, nil)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case ProviderOllama:
		llm, err := ollama.NewClient(ollama.Config{URL: cfg.OllamaURL, Model: cfg.Model}, handler, nil)
		if err != nil {
			return nil, err
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("llm %q: %w", cfg.Provider, ErrUnknownProvider)
	}
}

// NewEmbedder builds the embedder for cfg.Provider.
func NewEmbedder(cfg EmbeddingConfig) (embeddings.Embedder, error) {
	var client embeddings.EmbedderClient
	switch cfg.Provider {
	case "", ProviderOpenAI:
		c, err := openai.NewEmbeddingClient(openai.EmbeddingConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			ProjectID: cfg.ProjectID,
		}, nil)
		if err != nil {
			return nil, err
		}
		client = c
	case ProviderPrem:
		if cfg.ProjectID == 0 {
			return nil, fmt.Errorf("prem embeddings: %w", ErrMissingProjectID)
		}
		baseURL, model := cfg.BaseURL, cfg.Model
		if baseURL == "" {
			baseURL = openai.PremURL
		}
		if model == "" {
			model = openai.PremEmbeddingModel
		}
		c, err := openai.NewEmbeddingClient(openai.EmbeddingConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   baseURL,
			Model:     model,
			ProjectID: cfg.ProjectID,
		}, nil)
		if err != nil {
			return nil, err
		}
		client = c
	case ProviderOllama:
		c, err := ollama.NewClient(ollama.Config{URL: cfg.OllamaURL, Model: cfg.Model}, nil, nil)
		if err != nil {
			return nil, err
		}
		client = c
	default:
		return nil, fmt.Errorf("embedding %q: %w", cfg.Provider, ErrUnknownProvider)
	}

	opts := []embeddings.Option{}
	if cfg.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	embedder, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/callbacks"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"ragchat/src/log"
)

const (
	// DefaultChatURL is Groq's OpenAI compatible endpoint.
	DefaultChatURL   = "https://api.groq.com/openai/v1"
	DefaultChatModel = "llama-3.1-70b-versatile"

	DefaultEmbeddingModel = "text-embedding-3-small"

	PremURL            = "https://app.premai.io/v1"
	PremEmbeddingModel = "embed-multilingual-light"
)

var (
	ErrMissingAPIKey  = errors.New("missing API key")
	ErrEmbeddingCount = errors.New("embedding response count mismatch")
)

// ChatConfig configures an OpenAI compatible chat completion client
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewChatModel returns a langchaingo chat model for any OpenAI compatible
// API. handler may be nil.
func NewChatModel(cfg ChatConfig, handler callbacks.Handler, httpClient *http.Client) (*lcopenai.LLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("chat model: %w", ErrMissingAPIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultChatURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultChatModel
	}

	opts := []lcopenai.Option{
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithBaseURL(cfg.BaseURL),
		lcopenai.WithModel(cfg.Model),
	}
	if handler != nil {
		opts = append(opts, lcopenai.WithCallback(handler))
	}
	if httpClient != nil {
		opts = append(opts, lcopenai.WithHTTPClient(httpClient))
	}

	llm, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	log.Debug("Chat model configured", "baseURL", cfg.BaseURL, "model", cfg.Model)
	return llm, nil
}

// EmbeddingConfig configures an OpenAI compatible embeddings client.
// ProjectID is forwarded as "project_id" for providers such as Prem that
// scope requests by project.
type EmbeddingConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	ProjectID  int
	Dimensions int
}

// EmbeddingClient implements embeddings.EmbedderClient on top of go-openai.
// Requests are sent once; failures are returned to the caller.
type EmbeddingClient struct {
	client     *goopenai.Client
	model      string
	projectID  int
	dimensions int
}

// NewEmbeddingClient creates an embeddings client
func NewEmbeddingClient(cfg EmbeddingConfig, httpClient *http.Client) (*EmbeddingClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding client: %w", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}

	conf := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		conf.HTTPClient = httpClient
	}

	return &EmbeddingClient{
		client:     goopenai.NewClientWithConfig(conf),
		model:      cfg.Model,
		projectID:  cfg.ProjectID,
		dimensions: cfg.Dimensions,
	}, nil
}

// CreateEmbedding embeds texts in one request and returns vectors in input order.
func (c *EmbeddingClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := goopenai.EmbeddingRequest{
		Input:      texts,
		Model:      goopenai.EmbeddingModel(c.model),
		Dimensions: c.dimensions,
	}
	if c.projectID != 0 {
		req.ExtraBody = map[string]any{"project_id": c.projectID}
	}

	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingCount, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) || out[d.Index] != nil {
			return nil, fmt.Errorf("invalid embedding index %d", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

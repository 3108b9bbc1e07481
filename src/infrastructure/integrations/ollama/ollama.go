package ollama

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms/ollama"

	"ragchat/src/log"
)

const (
	DefaultURL   = "http://localhost:11434"
	DefaultModel = "llama3.1"
)

// Config selects a model on an Ollama server
type Config struct {
	URL   string
	Model string
}

// NewClient returns a langchaingo Ollama client. The same client serves
// chat completions and, through CreateEmbedding, embeddings.
func NewClient(cfg Config, handler callbacks.Handler, httpClient *http.Client) (*ollama.LLM, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	// WithServerURL exits the process on a bad URL
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}

	opts := []ollama.Option{
		ollama.WithServerURL(cfg.URL),
		ollama.WithModel(cfg.Model),
	}
	if httpClient != nil {
		opts = append(opts, ollama.WithHTTPClient(httpClient))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	if handler != nil {
		llm.CallbacksHandler = handler
	}
	log.Debug("Ollama client configured", "url", cfg.URL, "model", cfg.Model)
	return llm, nil
}

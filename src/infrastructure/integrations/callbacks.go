package integrations

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"ragchat/src/log"
)

// LogHandler writes model and retriever activity to the global logger at
// debug verbosity. Errors are always logged.
type LogHandler struct {
	callbacks.SimpleHandler
	logger logr.Logger
}

var _ callbacks.Handler = (*LogHandler)(nil)

func NewLogHandler() *LogHandler {
	return &LogHandler{logger: log.WithName("llm")}
}

func (h *LogHandler) HandleLLMGenerateContentStart(_ context.Context, ms []llms.MessageContent) {
	h.logger.V(1).Info("Generate content start", "messages", len(ms))
}

func (h *LogHandler) HandleLLMGenerateContentEnd(_ context.Context, res *llms.ContentResponse) {
	if res == nil || len(res.Choices) == 0 {
		h.logger.V(1).Info("Generate content end", "choices", 0)
		return
	}
	c := res.Choices[0]
	h.logger.V(1).Info("Generate content end",
		"choices", len(res.Choices),
		"stopReason", c.StopReason,
		"chars", len(c.Content),
	)
}

func (h *LogHandler) HandleLLMError(_ context.Context, err error) {
	h.logger.Error(err, "LLM call failed")
}

func (h *LogHandler) HandleRetrieverStart(_ context.Context, query string) {
	h.logger.V(1).Info("Retrieve start", "queryChars", len(query))
}

func (h *LogHandler) HandleRetrieverEnd(_ context.Context, _ string, docs []schema.Document) {
	sources := make([]any, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, d.Metadata["source"])
	}
	h.logger.V(1).Info("Retrieve end", "documents", len(docs), "sources", sources)
}

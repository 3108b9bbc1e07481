package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"

	"ragchat/src/core/knowledgebase"
)

const (
	// DefaultTopK is the number of chunks handed to the model per question.
	DefaultTopK = 4

	// DocumentSeparator joins retrieved chunks inside the prompt.
	DocumentSeparator = "\n\n"
)

// AnswerTemplate renders context, chat_history and input.
const AnswerTemplate = `Start a Friendly conversation with the user
Answer the following question.
underline the main answer.

{{.context}}
History:{{.chat_history}}
Human: {{.input}}
AI: Let's think about this step-by-step:
`

type Option func(*Generator)

var _ knowledgebase.Generator = (*Generator)(nil)

// WithCallOptions passes options to every completion call
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(g *Generator) {
		g.callOptions = append(g.callOptions, opts...)
	}
}

// WithStats records index statistics on the generator
func WithStats(s knowledgebase.IndexStats) Option {
	return func(g *Generator) {
		g.stats = s
	}
}

// Generator answers a question from retrieved context and prior history.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	retriever   schema.Retriever
	model       llms.Model
	prompt      prompts.PromptTemplate
	callOptions []llms.CallOption
	stats       knowledgebase.IndexStats
}

func NewGenerator(retriever schema.Retriever, model llms.Model, opts ...Option) *Generator {
	g := &Generator{
		retriever: retriever,
		model:     model,
		prompt:    prompts.NewPromptTemplate(AnswerTemplate, []string{"context", "chat_history", "input"}),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate retrieves context for question and asks the model for an
// answer. history is inserted verbatim. The answer is returned as the
// model produced it.
func (g *Generator) Generate(ctx context.Context, question, history string) (string, error) {
	prompt, err := g.Prompt(ctx, question, history)
	if err != nil {
		return "", err
	}

	answer, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, g.callOptions...)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return answer, nil
}

// Prompt returns the rendered prompt Generate would send.
func (g *Generator) Prompt(ctx context.Context, question, history string) (string, error) {
	docs, err := g.retriever.GetRelevantDocuments(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve documents: %w", err)
	}

	prompt, err := g.prompt.Format(map[string]any{
		"context":      joinDocuments(docs),
		"chat_history": history,
		"input":        question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return prompt, nil
}

// Stats returns the statistics recorded at build time
func (g *Generator) Stats() knowledgebase.IndexStats {
	return g.stats
}

func joinDocuments(docs []schema.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.PageContent
	}
	return strings.Join(parts, DocumentSeparator)
}

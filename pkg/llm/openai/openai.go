// Package openai implements llm.Provider over any OpenAI-compatible chat
// completions API.
package openai

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/entrhq/omni/pkg/types"
)

// Provider calls an OpenAI-compatible API. It satisfies llm.Provider so
// API-backed models sit alongside the local CLI backends.
type Provider struct {
	client openai.Client
	apiKey string
	model  string
}

// Option configures a Provider.
type Option func(*Provider)

// WithModel sets the model used for completions. The default is gpt-4o.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// New builds the provider. An empty apiKey falls back to OPENAI_API_KEY;
// the provider reports not-installed when neither is set.
func New(apiKey string, opts ...Option) *Provider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	p := &Provider{
		apiKey: apiKey,
		model:  "gpt-4o",
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client = openai.NewClient(option.WithAPIKey(apiKey))
	return p
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return "openai" }

// Installed reports whether credentials are present.
func (p *Provider) Installed() bool { return p.apiKey != "" }

// Send submits the prompt with history as structured chat messages and
// blocks for the full completion.
func (p *Provider) Send(ctx context.Context, prompt string, history []types.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, m := range history {
		if m.Role == types.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

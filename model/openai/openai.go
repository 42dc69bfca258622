// Package openai adapts the OpenAI Chat Completions API to
// capability.LLM. As with model/anthropic and model/bedrock, this is a
// thin reference adapter, not a hardened production client.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

// LLM adapts an OpenAI client into capability.LLM.
type LLM struct {
	client *openai.Client
}

// New returns an LLM using apiKey for authentication.
func New(apiKey string) *LLM {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &LLM{client: &client}
}

// Complete sends req.Context as a single user message and returns the
// completion's text.
func (l *LLM) Complete(ctx context.Context, req kernel.RequestLLM) (string, error) {
	model := openai.ChatModel(req.Model)
	if req.Model == "" {
		model = openai.ChatModelGPT4o
	}

	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Context),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	completion, err := l.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: completing: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai: completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

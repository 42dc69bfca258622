// Package anthropic adapts the Anthropic Messages API to capability.LLM,
// for reference and test use — see SPEC_FULL.md's non-goals note on
// model/* packages; this is not a production HTTP client hardened for
// every Anthropic account tier and rate-limit shape.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

// LLM adapts an Anthropic client into capability.LLM.
type LLM struct {
	client *anthropic.Client
}

// New returns an LLM using apiKey for authentication.
func New(apiKey string) *LLM {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &LLM{client: &client}
}

// Complete sends req.Context as a single user message and returns the
// concatenated text of every text block in the response.
func (l *LLM) Complete(ctx context.Context, req kernel.RequestLLM) (string, error) {
	model := anthropic.Model(req.Model)
	if req.Model == "" {
		model = anthropic.ModelClaudeSonnet4_5
	}
	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	message, err := l.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Context)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: completing: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// Package bedrock adapts AWS Bedrock's InvokeModel API (targeting
// Anthropic models hosted on Bedrock) to capability.LLM. Like its
// model/anthropic and model/openai siblings, this is a thin reference
// adapter used for tests and as a drop-in alternative provider, not a
// hardened production client.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

// Retryable classifies a Bedrock error as transient (a server-side fault
// the caller may retry) versus a client error that will never succeed on
// retry, using the smithy-go API error fault classification Bedrock's SDK
// surfaces.
func Retryable(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorFault() == smithy.FaultServer
}

// requestBody is the Anthropic-on-Bedrock "messages" API request shape.
type requestBody struct {
	AnthropicVersion string        `json:"anthropic_version"`
	MaxTokens        int           `json:"max_tokens"`
	Temperature      float64       `json:"temperature,omitempty"`
	Messages         []messageBody `json:"messages"`
}

type messageBody struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseBody struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// LLM adapts a Bedrock runtime client into capability.LLM.
type LLM struct {
	client *bedrockruntime.Client
}

// New returns an LLM using the given Bedrock runtime client.
func New(client *bedrockruntime.Client) *LLM {
	return &LLM{client: client}
}

// Complete invokes modelID (req.Model) with req.Context as a single user
// message and returns the concatenated text content of the response.
func (l *LLM) Complete(ctx context.Context, req kernel.RequestLLM) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body := requestBody{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		Temperature:      req.Temperature,
		Messages:         []messageBody{{Role: "user", Content: req.Context}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("bedrock: marshaling request: %w", err)
	}

	out, err := l.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(req.Model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: invoking model %s: %w", req.Model, err)
	}

	var resp responseBody
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("bedrock: decoding response: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// Package pipeline implements the extraction orchestration pipeline:
// document-type classification, rule pre-extraction, chunk planning,
// bounded-concurrency fan-out extraction, consolidation, and gap filling.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/tendersight/tender-cli/internal/model"
	"github.com/tendersight/tender-cli/internal/resilience"
	"github.com/tendersight/tender-cli/pkg/anthropic"
)

// systemPrompt constrains the capability to JSON output. Unescaped newlines
// inside string values are the most common recovery case downstream.
const systemPrompt = "You are a tender analyst. Output valid JSON only. Escape all newlines and quotes within string values."

// Completer is the extraction capability boundary: a prompt in, a
// best-effort textual answer out. The production implementation calls the
// Anthropic API; tests substitute a mock.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, model.TokenUsage, error)
}

// anthropicCompleter adapts pkg/anthropic to the Completer boundary.
type anthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicCompleter wraps an Anthropic client as the pipeline's
// extraction capability.
func NewAnthropicCompleter(client anthropic.Client, modelID string, maxTokens int64) Completer {
	if maxTokens <= 0 {
		maxTokens = 6000
	}
	return &anthropicCompleter{client: client, model: modelID, maxTokens: maxTokens}
}

func (c *anthropicCompleter) Complete(ctx context.Context, prompt string) (string, model.TokenUsage, error) {
	temp := 0.0
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", model.TokenUsage{}, eris.Wrap(err, "pipeline: capability call")
	}
	usage := model.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
	return resp.Text, usage, nil
}

// completeWithRetry wraps a capability call in the standard retry policy:
// exponential backoff, capped attempts, fixed penalty when the capability
// is rate-limiting.
func completeWithRetry(ctx context.Context, c Completer, operation, prompt string) (string, model.TokenUsage, error) {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("capability", operation)

	type callResult struct {
		text  string
		usage model.TokenUsage
	}
	res, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (callResult, error) {
		text, usage, callErr := c.Complete(ctx, prompt)
		return callResult{text: text, usage: usage}, callErr
	})
	return res.text, res.usage, err
}

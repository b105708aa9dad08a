package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tendersight/tender-cli/internal/config"
	"github.com/tendersight/tender-cli/internal/model"
	"github.com/tendersight/tender-cli/internal/ratelimit"
	"github.com/tendersight/tender-cli/pkg/anthropic"
)

// --- Completer Mock ---

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, model.TokenUsage, error) {
	args := m.Called(ctx, prompt)
	usage, _ := args.Get(1).(model.TokenUsage)
	return args.String(0), usage, args.Error(2)
}

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Helpers ---

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Anthropic.HaikuModel = "claude-haiku-4-5-20251001"
	cfg.Anthropic.SonnetModel = "claude-sonnet-4-5-20250929"
	cfg.Anthropic.MaxTokens = 6000
	cfg.RateLimit.RequestsPerMinute = 3000
	cfg.RateLimit.TokensPerMinute = 1_000_000
	cfg.Pipeline.ChunkSizeChars = 8000
	cfg.Pipeline.ContextBudgetTokens = 15_000
	cfg.Pipeline.SinglePassTokenLimit = 40_000
	cfg.Pipeline.MaxConcurrency = 20
	cfg.Pipeline.MergeCharBudget = 60_000
	return cfg
}

func testPipeline(cfg *config.Config, micro, final Completer) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		micro:  micro,
		final:  final,
		budget: ratelimit.NewBudget(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.TokensPerMinute),
	}
}

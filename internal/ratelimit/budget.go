// Package ratelimit implements dual-dimension admission control for the
// extraction capability: a per-minute request budget and a per-minute token
// budget, both refilling continuously.
package ratelimit

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Default capacities mirror the upstream provider's published per-minute
// limits.
const (
	DefaultRequestsPerMinute = 3000
	DefaultTokensPerMinute   = 1_000_000
)

// Budget is the process-wide rate budget shared by every capability call
// across all concurrent runs. Both dimensions are continuous-refill buckets:
// available = min(capacity, available + elapsed_seconds * capacity/60).
// Waiters queue fairly; Reserve delays but never fails except on context
// cancellation.
type Budget struct {
	requests *rate.Limiter
	tokens   *rate.Limiter

	tokenCapacity int
}

// NewBudget creates a Budget with the given per-minute capacities.
// Non-positive capacities fall back to the defaults.
func NewBudget(requestsPerMinute, tokensPerMinute int) *Budget {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	if tokensPerMinute <= 0 {
		tokensPerMinute = DefaultTokensPerMinute
	}
	return &Budget{
		requests:      rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
		tokens:        rate.NewLimiter(rate.Limit(float64(tokensPerMinute)/60.0), tokensPerMinute),
		tokenCapacity: tokensPerMinute,
	}
}

// Reserve blocks until one request slot and tokenCost tokens are available,
// then debits both dimensions. A tokenCost above the bucket's total capacity
// is capped to capacity so an oversized single prompt is charged the full
// bucket instead of starving forever.
func (b *Budget) Reserve(ctx context.Context, tokenCost int) error {
	if err := b.requests.Wait(ctx); err != nil {
		return eris.Wrap(err, "ratelimit: request budget")
	}

	if tokenCost < 1 {
		tokenCost = 1
	}
	if tokenCost > b.tokenCapacity {
		zap.L().Debug("ratelimit: capping oversized token cost",
			zap.Int("requested", tokenCost),
			zap.Int("capacity", b.tokenCapacity),
		)
		tokenCost = b.tokenCapacity
	}
	if err := b.tokens.WaitN(ctx, tokenCost); err != nil {
		return eris.Wrap(err, "ratelimit: token budget")
	}
	return nil
}

// TokenCapacity returns the token bucket's total capacity.
func (b *Budget) TokenCapacity() int {
	return b.tokenCapacity
}

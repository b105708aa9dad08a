package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tendersight/tender-cli/internal/model"
)

// DefaultMaxConcurrency bounds simultaneous in-flight extraction calls in
// the fan-out stage.
const DefaultMaxConcurrency = 20

// failureMarker prefixes the inline result recorded for a chunk whose
// extraction failed after exhausting its retries.
const failureMarkerPrefix = "[extraction failed: "

// FailureMarker renders the inline partial-result marker for a failed chunk.
func FailureMarker(err error) string {
	return failureMarkerPrefix + err.Error() + "]"
}

// IsFailureMarker reports whether a partial result is a per-chunk error
// marker rather than real extraction output.
func IsFailureMarker(s string) bool {
	return len(s) >= len(failureMarkerPrefix) && s[:len(failureMarkerPrefix)] == failureMarkerPrefix
}

// ExtractAll runs fn over every chunk with at most maxConcurrency calls in
// flight. A failing chunk never cancels its siblings: its slot in the
// result is replaced by an inline failure marker. Results are returned in
// chunk order once every call has settled. The only error returned is
// context cancellation.
func ExtractAll(ctx context.Context, chunks []model.Chunk, fn func(ctx context.Context, c model.Chunk) (string, error), maxConcurrency int) ([]string, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}

	results := make([]string, len(chunks))

	// Plain errgroup without WithContext: a chunk failure is absorbed into
	// its marker, so no goroutine error may cancel the batch.
	var g errgroup.Group
	g.SetLimit(maxConcurrency)

	for _, chunk := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := fn(ctx, chunk)
			if err != nil {
				zap.L().Warn("fanout: chunk extraction failed",
					zap.Int("chunk", chunk.Index),
					zap.Error(err),
				)
				results[chunk.Index] = FailureMarker(fmt.Errorf("chunk %d: %w", chunk.Index+1, err))
				return nil
			}
			results[chunk.Index] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

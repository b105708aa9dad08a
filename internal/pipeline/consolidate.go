package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tendersight/tender-cli/internal/model"
	"github.com/tendersight/tender-cli/internal/rules"
)

// DefaultMergeCharBudget bounds the combined context assembled from
// micro-summaries for the final structuring call.
const DefaultMergeCharBudget = 60_000

// MergeMicroResults builds the final-structuring context: a pre-extracted
// fields header followed by numbered partial-result sections. Once adding
// a section would exceed charBudget, that section and all later ones are
// dropped whole — a truncated partial is worse than an absent one.
func MergeMicroResults(partials []string, preExtracted rules.Fields, charBudget int) string {
	if charBudget <= 0 {
		charBudget = DefaultMergeCharBudget
	}

	var b strings.Builder
	b.WriteString("PRE-EXTRACTED DATA:\n")
	b.WriteString(marshalFields(preExtracted))
	b.WriteString("\n\nMICRO-SUMMARIES:\n")

	dropped := 0
	for i, partial := range partials {
		section := fmt.Sprintf("\n--- CHUNK %d ---\n%s\n", i+1, partial)
		if b.Len()+len(section) > charBudget {
			dropped = len(partials) - i
			break
		}
		b.WriteString(section)
	}
	if dropped > 0 {
		zap.L().Warn("consolidate: dropped sections over merge budget",
			zap.Int("dropped", dropped),
			zap.Int("total", len(partials)),
		)
	}
	return b.String()
}

// FinalStructure issues the single structuring call that turns the merged
// context into a schema-shaped record. Conflict resolution (most specific
// / most recent wins) is delegated to the capability via prompt
// instructions; the response is canonicalized so no foreign shape leaks
// into the record. Failure here is fatal for the run.
func FinalStructure(ctx context.Context, c Completer, mergedContext string) (model.Record, model.TokenUsage, error) {
	prompt := fmt.Sprintf(finalMergePrompt, mergedContext, model.SchemaJSON())

	raw, usage, err := completeWithRetry(ctx, c, "final_structure", prompt)
	if err != nil {
		return nil, usage, eris.Wrap(err, "consolidate: final structuring call")
	}

	decoded, err := DecodeResponse(raw)
	if err != nil {
		return nil, usage, eris.Wrap(err, "consolidate: final structuring response")
	}

	return model.Canonicalize(decoded, model.SchemaTemplate()), usage, nil
}

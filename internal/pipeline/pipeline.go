package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tendersight/tender-cli/internal/config"
	"github.com/tendersight/tender-cli/internal/model"
	"github.com/tendersight/tender-cli/internal/ratelimit"
	"github.com/tendersight/tender-cli/internal/rules"
	"github.com/tendersight/tender-cli/pkg/anthropic"
)

// Extraction strategies recorded in the run metadata.
const (
	StrategySinglePass   = "single_pass"
	StrategyHierarchical = "hierarchical"
)

// Token headroom reserved on top of the estimated prompt size, covering
// the response the capability will generate.
const (
	microReserveHeadroom = 1000
	finalReserveHeadroom = 2000
)

// Pipeline orchestrates a tender summarization run: classify, pre-extract,
// extract (single-pass or hierarchical), gap-refill, finalize.
type Pipeline struct {
	cfg    *config.Config
	micro  Completer
	final  Completer
	budget *ratelimit.Budget
}

// New wires a Pipeline from the shared capability client and rate budget.
// Micro-summaries run on the cheaper model; the final structuring call and
// the gap refill use the stronger one.
func New(cfg *config.Config, aiClient anthropic.Client, budget *ratelimit.Budget) *Pipeline {
	micro := NewAnthropicCompleter(aiClient, cfg.Anthropic.HaikuModel, cfg.Anthropic.MaxTokens)
	final := NewAnthropicCompleter(aiClient, cfg.Anthropic.SonnetModel, cfg.Anthropic.MaxTokens)
	return &Pipeline{
		cfg:    cfg,
		micro:  &budgetedCompleter{inner: micro, budget: budget, headroom: microReserveHeadroom},
		final:  &budgetedCompleter{inner: final, budget: budget, headroom: finalReserveHeadroom},
		budget: budget,
	}
}

// budgetedCompleter reserves rate-budget capacity for the estimated cost
// of each call before letting it through. Reservation failure means the
// context died while queued, which ends the run.
type budgetedCompleter struct {
	inner    Completer
	budget   *ratelimit.Budget
	headroom int
}

func (b *budgetedCompleter) Complete(ctx context.Context, prompt string) (string, model.TokenUsage, error) {
	if err := b.budget.Reserve(ctx, EstimateTokens(prompt)+b.headroom); err != nil {
		return "", model.TokenUsage{}, eris.Wrap(err, "pipeline: reserve budget")
	}
	return b.inner.Complete(ctx, prompt)
}

// Run executes the full summarization pipeline over the loaded documents.
func (p *Pipeline) Run(ctx context.Context, docs []model.Document) (*Envelope, error) {
	if len(docs) == 0 {
		return nil, eris.New("pipeline: no documents to process")
	}

	start := time.Now()
	log := zap.L().With(zap.Int("files", len(docs)))
	log.Info("pipeline: starting run")

	var usageMu sync.Mutex
	var totalUsage model.TokenUsage
	addUsage := func(u model.TokenUsage) {
		usageMu.Lock()
		totalUsage.Add(u)
		usageMu.Unlock()
	}

	// Classify and pre-extract on the combined text.
	classification := Classify(docs)
	combined := combineDocuments(docs)
	fields := rules.PortalFields(classification.Portal, combined)
	estTokens := EstimateTokens(combined)

	log.Info("pipeline: classified",
		zap.String("portal", classification.Portal),
		zap.Int("estimated_tokens", estTokens),
		zap.Int("pre_extracted_fields", len(fields)),
	)

	// Extract: one condensed call when the corpus fits, otherwise chunked
	// micro-summaries consolidated by a final structuring call.
	var record model.Record
	var strategy string
	var err error
	if estTokens <= p.cfg.Pipeline.SinglePassTokenLimit {
		strategy = StrategySinglePass
		record, err = p.runSinglePass(ctx, classification.Portal, combined, fields, addUsage)
	} else {
		strategy = StrategyHierarchical
		record, err = p.runHierarchical(ctx, combined, fields, addUsage)
	}
	if err != nil {
		return nil, err
	}

	// Gap refill: one targeted call for registry-critical fields still
	// empty after extraction.
	gaps := ScanGaps(record)
	critical := CriticalGaps(gaps)
	summary := Summarize(gaps)
	log.Info("pipeline: gap scan",
		zap.Int("total", summary.Total),
		zap.Int("critical", summary.Critical),
	)

	refilled := 0
	if len(critical) > 0 {
		record, err = p.runRefill(ctx, record, critical, docs, addUsage)
		if err != nil {
			return nil, err
		}
		refilled = summary.Critical - Summarize(CriticalGaps(ScanGaps(record))).Critical
		if refilled < 0 {
			refilled = 0
		}
	}

	// Finalize: clean placeholder phrases, validate, assemble envelope.
	record = CleanRecord(record)
	validation := Validate(record, classification.Portal)

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}

	envelope := &Envelope{
		Record: record,
		Metadata: model.RunMetadata{
			DocumentType:         classification.Portal,
			FilesProcessed:       names,
			EstimatedTokens:      estTokens,
			FieldsFilledByRefill: refilled,
			Strategy:             strategy,
			Validation:           validation,
		},
	}

	cost := anthropic.TokenUsage{
		InputTokens:  totalUsage.InputTokens,
		OutputTokens: totalUsage.OutputTokens,
	}
	cost.LogCost(p.cfg.Anthropic.SonnetModel, "run")

	log.Info("pipeline: run complete",
		zap.String("strategy", strategy),
		zap.Bool("valid", validation.IsValid),
		zap.Int("fields_refilled", refilled),
		zap.Int64("input_tokens", totalUsage.InputTokens),
		zap.Int64("output_tokens", totalUsage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return envelope, nil
}

func (p *Pipeline) runSinglePass(ctx context.Context, portal, combined string, fields rules.Fields, addUsage func(model.TokenUsage)) (model.Record, error) {
	sections := rules.ExtractCriticalSections(combined)
	condensed := BuildCondensedContext(combined, fields, sections, p.cfg.Pipeline.ContextBudgetTokens)
	prompt := fmt.Sprintf(singlePassPrompt,
		portalLabel(portal), model.SchemaJSON(), marshalFields(fields), condensed)

	raw, usage, err := completeWithRetry(ctx, p.final, "single_pass", prompt)
	addUsage(usage)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: single pass")
	}

	decoded, err := DecodeResponse(raw)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: single pass response")
	}
	return model.Canonicalize(decoded, model.SchemaTemplate()), nil
}

func (p *Pipeline) runHierarchical(ctx context.Context, combined string, fields rules.Fields, addUsage func(model.TokenUsage)) (model.Record, error) {
	chunks := SplitChunks(combined, p.cfg.Pipeline.ChunkSizeChars)
	zap.L().Info("pipeline: hierarchical extraction",
		zap.Int("chunks", len(chunks)),
	)

	partials, err := ExtractAll(ctx, chunks, func(ctx context.Context, c model.Chunk) (string, error) {
		prompt := fmt.Sprintf(microSummaryPrompt, c.Text)
		raw, usage, callErr := completeWithRetry(ctx, p.micro, "micro_summary", prompt)
		addUsage(usage)
		if callErr != nil {
			return "", callErr
		}
		return raw, nil
	}, p.cfg.Pipeline.MaxConcurrency)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: micro summaries")
	}

	merged := MergeMicroResults(partials, fields, p.cfg.Pipeline.MergeCharBudget)
	record, usage, err := FinalStructure(ctx, p.final, merged)
	addUsage(usage)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Pipeline) runRefill(ctx context.Context, record model.Record, critical []model.MissingField, docs []model.Document, addUsage func(model.TokenUsage)) (model.Record, error) {
	refilled, usage, err := Refill(ctx, p.final, record, critical, docs)
	addUsage(usage)
	if err != nil {
		return nil, err
	}
	return refilled, nil
}

// combineDocuments joins every document's filtered text with a named
// separator so chunk and section extraction keep file attribution.
func combineDocuments(docs []model.Document) string {
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "===== FILE: %s =====\n", d.Name)
		b.WriteString(FilterLines(d.Text))
	}
	return b.String()
}

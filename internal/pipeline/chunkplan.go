package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tendersight/tender-cli/internal/model"
	"github.com/tendersight/tender-cli/internal/rules"
)

// bytesPerToken is the fixed size heuristic used everywhere a token
// estimate is needed.
const bytesPerToken = 4

// EstimateTokens roughly estimates token count from text length.
func EstimateTokens(text string) int {
	return len(text) / bytesPerToken
}

// FilterLines drops blank lines and trims the rest, shrinking the input
// before chunking.
func FilterLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// SplitChunks splits text into chunks of at most maxSize characters,
// breaking only on line boundaries. A line longer than maxSize becomes its
// own chunk rather than being cut. Every line is kept, blank ones included,
// so concatenating the chunks' lines reproduces the input line sequence
// exactly; callers that want blank lines gone run FilterLines first.
func SplitChunks(text string, maxSize int) []model.Chunk {
	if text == "" {
		return nil
	}

	var chunks []model.Chunk
	var current []string
	size := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, model.Chunk{
			Index: len(chunks),
			Text:  strings.Join(current, "\n"),
		})
		current = current[:0]
		size = 0
	}

	for _, line := range strings.Split(text, "\n") {
		if size+len(line) > maxSize && len(current) > 0 {
			flush()
		}
		current = append(current, line)
		size += len(line) + 1
	}
	flush()

	return chunks
}

// sectionWeights allocates the condensed-context budget across critical
// sections. Weights sum to 1.0; order fixes the section layout in the
// generated context.
var sectionWeights = []struct {
	key    string
	title  string
	weight float64
}{
	{rules.SectionEligibility, "ELIGIBILITY CRITERIA", 0.30},
	{rules.SectionFinancial, "FINANCIAL REQUIREMENTS", 0.25},
	{rules.SectionTimeline, "KEY DATES & TIMELINE", 0.15},
	{rules.SectionScope, "SCOPE OF WORK", 0.15},
	{rules.SectionTerms, "TERMS & CONDITIONS", 0.15},
}

// truncatedMarker separates the head and tail kept from an over-budget
// section.
const truncatedMarker = "\n... [truncated] ...\n"

// BuildCondensedContext assembles the single-pass extraction context. When
// the full text fits the token budget (with a 10% safety margin) it is
// included verbatim after the pre-extracted-fields header. Otherwise the
// remaining budget is split across critical sections by fixed priority
// weights; an over-budget section keeps its head and tail, where boundary
// information is densest, with an explicit truncation marker between.
func BuildCondensedContext(fullText string, preExtracted rules.Fields, sections map[string]string, budgetTokens int) string {
	var b strings.Builder
	b.WriteString("=== PRE-EXTRACTED DATA ===\n")
	b.WriteString(marshalFields(preExtracted))
	b.WriteString("\n\n")

	if float64(EstimateTokens(fullText)) < float64(budgetTokens)*0.9 {
		b.WriteString("=== COMPLETE TENDER DOCUMENT ===\n")
		b.WriteString(fullText)
		b.WriteString("\n")
		return b.String()
	}

	// Reserve headroom for headers and the prompt template around us.
	availTokens := budgetTokens - EstimateTokens(b.String()) - 500
	if availTokens < 0 {
		availTokens = 0
	}

	for _, sw := range sectionWeights {
		content, ok := sections[sw.key]
		if !ok {
			continue
		}
		limit := int(float64(availTokens) * sw.weight * bytesPerToken)
		if len(content) > limit && limit > 0 {
			half := limit / 2
			content = content[:half] + truncatedMarker + content[len(content)-half:]
		}
		fmt.Fprintf(&b, "\n=== %s ===\n%s\n", sw.title, content)
	}
	return b.String()
}

// marshalFields serializes a pre-extracted field map as indented JSON for
// prompt injection.
func marshalFields(f rules.Fields) string {
	if len(f) == 0 {
		return "{}"
	}
	out, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

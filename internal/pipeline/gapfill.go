package pipeline

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tendersight/tender-cli/internal/model"
)

//go:embed critical_fields.yaml
var criticalFieldsYAML []byte

// criticalRegistry maps section name to the set of mandatory field names.
// Loaded once from the embedded table; read-only afterward.
var criticalRegistry = mustLoadRegistry()

func mustLoadRegistry() map[string]map[string]struct{} {
	var raw map[string][]string
	if err := yaml.Unmarshal(criticalFieldsYAML, &raw); err != nil {
		panic("pipeline: invalid critical_fields.yaml: " + err.Error())
	}
	out := make(map[string]map[string]struct{}, len(raw))
	for section, fields := range raw {
		set := make(map[string]struct{}, len(fields))
		for _, f := range fields {
			set[f] = struct{}{}
		}
		out[section] = set
	}
	return out
}

// isCriticalField checks the registry. Top-level scalars use the "root"
// section.
func isCriticalField(section, field string) bool {
	set, ok := criticalRegistry[section]
	if !ok {
		return false
	}
	_, ok = set[field]
	return ok
}

// refillDocChars bounds the per-document context included in the targeted
// refill call.
const refillDocChars = 15_000

// ScanGaps walks the record and reports every empty leaf: nil-equivalent,
// empty collection, or a placeholder-token string. Each hit carries its
// dot path and whether the critical-field registry marks it mandatory.
func ScanGaps(record model.Record) []model.MissingField {
	return scanGaps(record, "", "")
}

func scanGaps(record model.Record, parentKey, path string) []model.MissingField {
	var missing []model.MissingField
	for _, key := range record.SortedKeys() {
		value := record[key]
		currentPath := key
		if path != "" {
			currentPath = path + "." + key
		}

		if value.Kind == model.KindSection {
			missing = append(missing, scanGaps(value.Section, key, currentPath)...)
			continue
		}

		if model.IsEmptyValue(value) {
			section := parentKey
			if section == "" {
				section = "root"
			}
			missing = append(missing, model.MissingField{
				Section:  section,
				Field:    key,
				Path:     currentPath,
				Critical: isCriticalField(section, key),
			})
		}
	}
	return missing
}

// Summarize aggregates a gap scan for logging and the validation envelope.
func Summarize(missing []model.MissingField) model.GapSummary {
	s := model.GapSummary{BySection: make(map[string]int)}
	for _, m := range missing {
		s.Total++
		if m.Critical {
			s.Critical++
		}
		s.BySection[m.Section]++
	}
	return s
}

// CriticalGaps filters a scan down to registry-mandatory fields.
func CriticalGaps(missing []model.MissingField) []model.MissingField {
	var out []model.MissingField
	for _, m := range missing {
		if m.Critical {
			out = append(out, m)
		}
	}
	return out
}

// Refill recovers missing critical fields with exactly one targeted
// capability call listing the gap paths alongside truncated source
// documents, then merges the response into the record non-destructively.
// With no critical gaps it returns the record unchanged without calling
// the capability, which makes a second refill on complete output a no-op.
// A capability or decode failure here is fatal for the run.
func Refill(ctx context.Context, c Completer, record model.Record, criticalGaps []model.MissingField, docs []model.Document) (model.Record, model.TokenUsage, error) {
	if len(criticalGaps) == 0 {
		return record, model.TokenUsage{}, nil
	}

	var paths strings.Builder
	for _, m := range criticalGaps {
		fmt.Fprintf(&paths, "- %s\n", m.Path)
	}

	var docCtx strings.Builder
	for _, d := range docs {
		content := d.Text
		if len(content) > refillDocChars {
			content = content[:refillDocChars]
		}
		fmt.Fprintf(&docCtx, "--- Doc: %s ---\n%s\n", d.Name, content)
	}

	prompt := fmt.Sprintf(gapFillPrompt, paths.String(), docCtx.String())

	zap.L().Info("gapfill: issuing targeted refill",
		zap.Int("critical_gaps", len(criticalGaps)),
	)

	raw, usage, err := completeWithRetry(ctx, c, "gap_refill", prompt)
	if err != nil {
		return nil, usage, eris.Wrap(err, "gapfill: refill call")
	}

	decoded, err := DecodeResponse(raw)
	if err != nil {
		return nil, usage, eris.Wrap(err, "gapfill: refill response")
	}

	updates := model.Canonicalize(decoded, model.SchemaTemplate())
	return DeepMerge(record, updates), usage, nil
}

// DeepMerge overlays updates onto base, recursing through matching
// sections and overwriting a leaf only when the update value is non-empty
// under the placeholder-token definition. A non-empty base leaf is never
// destroyed by an empty update. The result is a new Record; base is left
// untouched.
func DeepMerge(base, updates model.Record) model.Record {
	out := base.Clone()
	for key, update := range updates {
		existing, ok := out[key]
		if ok && existing.Kind == model.KindSection && update.Kind == model.KindSection {
			out[key] = model.Section(DeepMerge(existing.Section, update.Section))
			continue
		}
		if !model.IsEmptyValue(update) {
			out[key] = update
		}
	}
	return out
}

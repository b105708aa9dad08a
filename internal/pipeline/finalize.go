package pipeline

import (
	"github.com/tendersight/tender-cli/internal/model"
)

// CleanRecord strips every leaf that holds only a placeholder phrase
// ("not mentioned", "n/a", "null", ...) from the record, then prunes
// lists and sections left empty by the stripping. Downstream consumers
// see only keys that carry real extracted content.
func CleanRecord(record model.Record) model.Record {
	out := make(model.Record, len(record))
	for key, value := range record {
		if cleaned, keep := cleanValue(value); keep {
			out[key] = cleaned
		}
	}
	return out
}

func cleanValue(value model.Value) (model.Value, bool) {
	switch value.Kind {
	case model.KindString:
		if model.IsStopToken(value.Str) {
			return model.Value{}, false
		}
		return value, true
	case model.KindList:
		kept := make([]string, 0, len(value.List))
		for _, item := range value.List {
			if !model.IsStopToken(item) {
				kept = append(kept, item)
			}
		}
		if len(kept) == 0 {
			return model.Value{}, false
		}
		return model.List(kept...), true
	case model.KindSection:
		section := CleanRecord(value.Section)
		if len(section) == 0 {
			return model.Value{}, false
		}
		return model.Section(section), true
	default:
		return value, true
	}
}

// Envelope is the final output shape: the cleaned record plus a
// run-metadata block under the reserved "_metadata" key.
type Envelope struct {
	Record   model.Record
	Metadata model.RunMetadata
}

// ToMap flattens the envelope for JSON serialization, attaching metadata
// under "_metadata".
func (e Envelope) ToMap() map[string]any {
	out := e.Record.ToMap()
	out["_metadata"] = e.Metadata
	return out
}

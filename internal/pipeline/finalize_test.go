package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendersight/tender-cli/internal/model"
)

func TestCleanRecord_StripsPlaceholders(t *testing.T) {
	record := model.Record{
		"executive_summary": model.String("Not Mentioned"),
		"tender_meta": model.Section(model.Record{
			"tender_id": model.String("GEM/2025/B/123"),
			"state":     model.String("N/A"),
			"country":   model.String("null"),
		}),
		"documents_required": model.Section(model.Record{
			"documents_required": model.List("PAN Card", "not found", "GST Certificate", "None"),
		}),
	}

	out := CleanRecord(record)

	_, ok := out.Get("executive_summary")
	assert.False(t, ok, "placeholder leaf kept")
	_, ok = out.Get("tender_meta.state")
	assert.False(t, ok, "placeholder leaf kept")
	_, ok = out.Get("tender_meta.country")
	assert.False(t, ok, "placeholder leaf kept")

	v, ok := out.Get("tender_meta.tender_id")
	require.True(t, ok)
	assert.Equal(t, "GEM/2025/B/123", v.Str)
	v, ok = out.Get("documents_required.documents_required")
	require.True(t, ok)
	assert.Equal(t, []string{"PAN Card", "GST Certificate"}, v.List)
}

func TestCleanRecord_PrunesEmptySections(t *testing.T) {
	record := model.Record{
		"tender_meta": model.Section(model.Record{
			"tender_id": model.String("CPPP/2025/42"),
		}),
		"eligibility_snapshot": model.Section(model.Record{
			"mse_exemption":     model.String("not specified"),
			"startup_exemption": model.String(""),
		}),
		"documents_required": model.Section(model.Record{
			"documents_required": model.List("n/a", "none"),
		}),
	}

	out := CleanRecord(record)

	assert.Len(t, out, 1)
	_, ok := out["eligibility_snapshot"]
	assert.False(t, ok, "section of stripped leaves kept")
	_, ok = out["documents_required"]
	assert.False(t, ok, "section holding an emptied list kept")
}

func TestCleanRecord_EmptyTemplateStripsToNothing(t *testing.T) {
	out := CleanRecord(model.SchemaTemplate())
	assert.Empty(t, out)
}

func TestEnvelope_ToMapCarriesMetadata(t *testing.T) {
	env := Envelope{
		Record: model.Record{
			"executive_summary": model.String("Supply of routers"),
		},
		Metadata: model.RunMetadata{
			DocumentType:   model.PortalGeM,
			FilesProcessed: []string{"bid.pdf", "atc.pdf"},
			Strategy:       StrategySinglePass,
		},
	}

	m := env.ToMap()
	assert.Equal(t, "Supply of routers", m["executive_summary"])
	require.Contains(t, m, "_metadata")

	// The envelope serializes with snake_case metadata keys.
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"document_type":"GeM"`)
	assert.Contains(t, string(raw), `"files_processed":["bid.pdf","atc.pdf"]`)
	assert.Contains(t, string(raw), `"strategy":"single_pass"`)
}

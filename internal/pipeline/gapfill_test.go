package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tendersight/tender-cli/internal/model"
)

func recordWithGaps() model.Record {
	r := model.SchemaTemplate().Clone()
	r.Set("tender_meta.tender_id", model.String("GEM/2025/B/999"))
	r.Set("tender_meta.department", model.String("Dept of Telecom"))
	r.Set("financial_requirements.emd", model.String("₹50,000"))
	r.Set("key_dates.bid_start", model.String("01-09-2025 10:00"))
	// bid_end stays empty
	return r
}

func TestScanGaps_FindsEmptyAndPlaceholderLeaves(t *testing.T) {
	r := recordWithGaps()
	r.Set("key_dates.bid_end", model.String("not mentioned"))

	gaps := ScanGaps(r)
	paths := make(map[string]model.MissingField, len(gaps))
	for _, g := range gaps {
		paths[g.Path] = g
	}

	// Placeholder tokens count as missing.
	g, ok := paths["key_dates.bid_end"]
	require.True(t, ok)
	assert.True(t, g.Critical)
	assert.Equal(t, "key_dates", g.Section)

	// Filled fields do not.
	_, ok = paths["tender_meta.tender_id"]
	assert.False(t, ok)
	_, ok = paths["financial_requirements.emd"]
	assert.False(t, ok)
}

func TestScanGaps_RootScalars(t *testing.T) {
	gaps := ScanGaps(model.SchemaTemplate())
	var found *model.MissingField
	for i, g := range gaps {
		if g.Path == "executive_summary" {
			found = &gaps[i]
			break
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "root", found.Section)
	assert.True(t, found.Critical)
}

func TestSummarize_CountsBySections(t *testing.T) {
	gaps := []model.MissingField{
		{Section: "key_dates", Field: "bid_end", Path: "key_dates.bid_end", Critical: true},
		{Section: "key_dates", Field: "pre_bid_meeting", Path: "key_dates.pre_bid_meeting"},
		{Section: "scope_of_work", Field: "description", Path: "scope_of_work.description", Critical: true},
	}
	s := Summarize(gaps)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Critical)
	assert.Equal(t, 2, s.BySection["key_dates"])
	assert.Equal(t, 1, s.BySection["scope_of_work"])
}

func TestDeepMerge_NonDestructive(t *testing.T) {
	base := recordWithGaps()
	updates := model.Record{
		"tender_meta": model.Section(model.Record{
			"tender_id":    model.String(""),              // empty update must not erase
			"department":   model.String("not mentioned"), // placeholder must not erase
			"tender_title": model.String("Router Supply"), // real value lands
		}),
		"key_dates": model.Section(model.Record{
			"bid_end": model.String("15-09-2025 15:00"),
		}),
	}

	merged := DeepMerge(base, updates)

	v, _ := merged.Get("tender_meta.tender_id")
	assert.Equal(t, "GEM/2025/B/999", v.Str)
	v, _ = merged.Get("tender_meta.department")
	assert.Equal(t, "Dept of Telecom", v.Str)
	v, _ = merged.Get("tender_meta.tender_title")
	assert.Equal(t, "Router Supply", v.Str)
	v, _ = merged.Get("key_dates.bid_end")
	assert.Equal(t, "15-09-2025 15:00", v.Str)

	// base untouched
	v, _ = base.Get("tender_meta.tender_title")
	assert.True(t, model.IsEmptyValue(v))
}

func TestRefill_NoCriticalGapsIsNoOp(t *testing.T) {
	c := &mockCompleter{}

	record := recordWithGaps()
	out, usage, err := Refill(context.Background(), c, record, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TokenUsage{}, usage)
	assert.Equal(t, record, out)

	c.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestRefill_MergesRecoveredFields(t *testing.T) {
	record := recordWithGaps()
	gaps := CriticalGaps(ScanGaps(record))
	require.NotEmpty(t, gaps)

	docs := []model.Document{
		{Name: "tender.pdf", Text: "Bid End Date: 15-09-2025 15:00"},
	}

	c := &mockCompleter{}
	c.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "key_dates.bid_end") &&
			strings.Contains(p, "--- Doc: tender.pdf ---")
	})).Return(`{"key_dates": {"bid_end": "15-09-2025 15:00"}, "scope_of_work": {"description": "Not mentioned"}}`,
		model.TokenUsage{InputTokens: 200, OutputTokens: 40}, nil)

	out, usage, err := Refill(context.Background(), c, record, gaps, docs)
	require.NoError(t, err)
	assert.Equal(t, int64(200), usage.InputTokens)

	v, _ := out.Get("key_dates.bid_end")
	assert.Equal(t, "15-09-2025 15:00", v.Str)

	// "Not mentioned" answers never overwrite or pollute.
	v, _ = out.Get("scope_of_work.description")
	assert.True(t, model.IsEmptyValue(v))

	// Pre-existing values survive.
	v, _ = out.Get("tender_meta.tender_id")
	assert.Equal(t, "GEM/2025/B/999", v.Str)

	c.AssertExpectations(t)
}

func TestRefill_TruncatesLongDocuments(t *testing.T) {
	record := recordWithGaps()
	gaps := CriticalGaps(ScanGaps(record))

	long := strings.Repeat("x", refillDocChars*3)
	docs := []model.Document{{Name: "huge.pdf", Text: long}}

	c := &mockCompleter{}
	c.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		return len(p) < refillDocChars*2
	})).Return(`{}`, model.TokenUsage{}, nil)

	_, _, err := Refill(context.Background(), c, record, gaps, docs)
	require.NoError(t, err)
	c.AssertExpectations(t)
}

func TestRefill_FailureIsFatal(t *testing.T) {
	record := recordWithGaps()
	gaps := CriticalGaps(ScanGaps(record))

	c := &mockCompleter{}
	c.On("Complete", mock.Anything, mock.Anything).
		Return("", model.TokenUsage{}, errors.New("invalid request"))

	_, _, err := Refill(context.Background(), c, record, gaps, []model.Document{{Name: "a", Text: "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refill call")
}

func TestRefill_MalformedResponseIsFatal(t *testing.T) {
	record := recordWithGaps()
	gaps := CriticalGaps(ScanGaps(record))

	c := &mockCompleter{}
	c.On("Complete", mock.Anything, mock.Anything).
		Return("no json here", model.TokenUsage{}, nil)

	_, _, err := Refill(context.Background(), c, record, gaps, nil)
	require.Error(t, err)

	var malformed *MalformedExtractionError
	assert.True(t, errors.As(err, &malformed))
}

func TestCriticalFieldRegistry_Loads(t *testing.T) {
	assert.True(t, isCriticalField("key_dates", "bid_end"))
	assert.True(t, isCriticalField("tender_meta", "tender_id"))
	assert.True(t, isCriticalField("root", "executive_summary"))
	assert.False(t, isCriticalField("key_dates", "made_up_field"))
	assert.False(t, isCriticalField("made_up_section", "tender_id"))
}

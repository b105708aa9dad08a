// Package rules implements deterministic pre-extraction: regex rule tables
// that populate known tender fields before any capability call, portal
// indicator sets for document-type classification, and critical-section
// slicing used to build condensed contexts.
package rules

import (
	"regexp"
	"strings"
)

// Fields is a flat pre-extracted field map. Values are strings except
// documents_required, which is a string slice.
type Fields map[string]any

// patterns maps field keys to compiled generic tender patterns. Capture
// group 1 is the value when present; otherwise the whole match is used.
var patterns = map[string]*regexp.Regexp{
	"tender_id_gem":        regexp.MustCompile(`(?i)GEM/\d{4}/[A-Z]/\d+`),
	"tender_id_generic":    regexp.MustCompile(`(?i)(?:Tender\s+(?:No|ID|Reference)|Ref(?:\.?\s*No)?|NIT\s*(?:No|ID|Ref)?|Solicitation\s+No)[\s:]+\s*([A-Z0-9\-_/]{4,})`),
	"emd_amount":           regexp.MustCompile(`(?i)(?:EMD|Earnest\s+Money(?:\s+Deposit)?)\s*[:\-]?\s*₹?\s*(?:Rs\.?)?\s*([\d,]+(?:\.\d{2})?)\s*(?:Lakhs?|Crores?|/-)?`),
	"tender_fee":           regexp.MustCompile(`(?i)(?:Tender\s+(?:Fee|Document\s+Fee))\s*[:\-]?\s*₹?\s*(?:Rs\.?)?\s*([\d,]+(?:\.\d{2})?)`),
	"performance_security": regexp.MustCompile(`(?i)(?:Performance\s+(?:Security|Bank\s+Guarantee|Guarantee))\s*[:\-]?\s*(\d+%|\d+\s*%|₹\s*[\d,]+)`),
	"bid_end":              regexp.MustCompile(`(?i)(?:Bid\s+(?:Submission\s+)?(?:End|Closing)\s+Date(?:/Time)?)\s*[:\-]?\s*(\d{2}[-/.]\d{2}[-/.]\d{4}(?:\s+\d{2}:\d{2}(?::\d{2})?)?)`),
	"bid_start":            regexp.MustCompile(`(?i)(?:Bid\s+(?:Submission\s+)?(?:Start|Opening|Open)\s+Date(?:/Time)?)\s*[:\-]?\s*(\d{2}[-/.]\d{2}[-/.]\d{4}(?:\s+\d{2}:\d{2}(?::\d{2})?)?)`),
	"technical_bid_opening": regexp.MustCompile(`(?i)(?:Technical\s+Bid\s+Opening(?:/Time)?)\s*[:\-]?\s*(\d{2}[-/.]\d{2}[-/.]\d{4}(?:\s+\d{2}:\d{2}(?::\d{2})?)?)`),
	"financial_bid_opening": regexp.MustCompile(`(?i)(?:Financial\s+Bid\s+Opening(?:/Time)?)\s*[:\-]?\s*(\d{2}[-/.]\d{2}[-/.]\d{4}(?:\s+\d{2}:\d{2}(?::\d{2})?)?)`),
	"bid_validity":         regexp.MustCompile(`(?i)(?:Bid\s+(?:Offer\s+)?Validity(?:\s+\(From\s+End\s+Date\))?)\s*[:\-]?\s*(\d+)`),
	"turnover":             regexp.MustCompile(`(?i)(?:Annual\s+)?Turnover\s*[:\-]?\s*(?:of\s+)?₹?\s*(?:Rs\.?)?\s*([\d,]+(?:\.\d{2})?)\s*(?:Lakhs?|Crores?)`),
	"experience_years":     regexp.MustCompile(`(?i)(?:Experience\s+of\s+|Minimum\s+)(\d+)\s+(?:years?|yrs)`),
	"similar_projects":     regexp.MustCompile(`(?i)(\d+)\s+similar\s+(?:projects?|works?|contracts?)`),
	"msme_exemption":       regexp.MustCompile(`(?i)MSMEs?\s+(?:are\s+)?exempt(?:ed)?|(?:EMD|Earnest\s+Money)\s+exemption\s+for\s+MSMEs?`),
	"startup_exemption":    regexp.MustCompile(`(?i)Startups?\s+(?:are\s+)?exempt(?:ed)?|exemption\s+for\s+Startups?`),
	"local_content":        regexp.MustCompile(`(?i)(?:Local\s+Content|Make\s+in\s+India|Minimum\s+Local\s+Content)\s*[:\-]?\s*(\d+%|\d+\s*%)`),
	"consortium_allowed":   regexp.MustCompile(`(?i)(?:Consortium|Joint\s+Venture|JV)\s+(?:is\s+)?(?:allowed|permitted|not\s+allowed|not\s+permitted)`),
}

// dateOnly rejects tender-ID candidates that are really dates.
var dateOnly = regexp.MustCompile(`^\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}$`)

// extractField applies a named pattern and returns capture group 1 (or the
// whole match when the pattern has no groups). Empty string means no match.
func extractField(text, key string) string {
	re, ok := patterns[key]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if len(m) > 1 && m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}

// ExtractStructuredFields runs the generic rule table over the combined
// text and returns every field it can populate without a capability call.
// Portal-specific tables (GeM, CPPP) are layered on by the caller based on
// the classification.
func ExtractStructuredFields(text string) Fields {
	out := Fields{}

	tid := extractField(text, "tender_id_gem")
	if tid == "" {
		tid = extractField(text, "tender_id_generic")
	}
	// Keep anything that is not literally a date: a mis-captured date is
	// worse than no ID at all.
	if tid != "" && !dateOnly.MatchString(tid) {
		out["tender_id"] = tid
	}

	if emd := extractField(text, "emd_amount"); emd != "" {
		out["emd"] = "₹" + emd
	}
	if fee := extractField(text, "tender_fee"); fee != "" {
		out["tender_fee"] = "₹" + fee
	}
	if ps := extractField(text, "performance_security"); ps != "" {
		out["performance_security"] = ps
	}

	for _, key := range []string{"bid_start", "bid_end", "technical_bid_opening", "financial_bid_opening"} {
		if val := extractField(text, key); val != "" {
			out[key] = val
		}
	}
	if bv := extractField(text, "bid_validity"); bv != "" {
		out["bid_validity"] = bv + " days"
	}

	if turnover := extractField(text, "turnover"); turnover != "" {
		out["turnover_requirement"] = "₹" + turnover
	}

	exp := extractField(text, "experience_years")
	proj := extractField(text, "similar_projects")
	var parts []string
	if exp != "" {
		parts = append(parts, exp+" years")
	}
	if proj != "" {
		parts = append(parts, proj+" projects")
	}
	if len(parts) > 0 {
		out["experience_required"] = strings.Join(parts, " / ")
	}

	if patterns["msme_exemption"].MatchString(text) {
		out["msme_exemption"] = "Yes"
	}
	if patterns["startup_exemption"].MatchString(text) {
		out["startup_exemption"] = "Yes"
	}
	if lc := extractField(text, "local_content"); lc != "" {
		out["local_content_requirement"] = lc
	}
	if ca := extractField(text, "consortium_allowed"); ca != "" {
		out["consortium_or_jv_allowed"] = ca
	}

	return out
}

// Section keys produced by ExtractCriticalSections, in condensed-context
// priority order.
const (
	SectionEligibility = "eligibility"
	SectionFinancial   = "financial"
	SectionTimeline    = "timeline"
	SectionScope       = "scope_of_work"
	SectionTerms       = "terms_conditions"
)

// maxSectionChars bounds each extracted section before budgeting.
const maxSectionChars = 5000

var sectionPatterns = map[string]*regexp.Regexp{
	SectionEligibility: regexp.MustCompile(`(?is)(?:Eligibility|Qualification|Who Can Bid).*?\n(.*?)(?:\n\s*\d+\.|\z)`),
	SectionFinancial:   regexp.MustCompile(`(?is)(?:Financial Requirements?|EMD|Tender Fee).*?\n(.*?)(?:\n\s*\d+\.|\z)`),
	SectionScope:       regexp.MustCompile(`(?is)(?:Scope of Work|Technical Specs?).*?\n(.*?)(?:\n\s*\d+\.|\z)`),
	SectionTerms:       regexp.MustCompile(`(?is)(?:Terms and Conditions|Special Conditions).*?\n(.*?)(?:\n\s*\d+\.|\z)`),
	SectionTimeline:    regexp.MustCompile(`(?is)(?:Important Dates?|Timeline|Schedule).*?\n(.*?)(?:\n\s*\d+\.|\z)`),
}

// ExtractCriticalSections slices the document into named sections that the
// condensed-context builder samples from. Absent sections are omitted.
func ExtractCriticalSections(text string) map[string]string {
	sections := make(map[string]string)
	for name, re := range sectionPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		content := strings.TrimSpace(m[1])
		if len(content) > maxSectionChars {
			content = content[:maxSectionChars]
		}
		if content != "" {
			sections[name] = content
		}
	}
	return sections
}

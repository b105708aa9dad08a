package rules

import (
	"regexp"
	"strings"
)

// GeM bid documents follow a bilingual tabular layout: the label sits on
// one line and the value on the next, so these patterns span lines.
var gemPatterns = map[string]*regexp.Regexp{
	"boq_title":          regexp.MustCompile(`(?i)(?:BOQ|Bill\s+of\s+Quantities)\s*[:\-]?\s*(.+)`),
	"item_category":      regexp.MustCompile(`(?i)(?:Item\s+Category|Product\s+Category)\s*[:\-]?\s*(.+)`),
	"total_quantity":     regexp.MustCompile(`(?i)(?:Total\s+Quantity|Total\s+Qty\.?|Qty\.?)\s*[:\-]?\s*(\d+(?:[,.\d]+)?)`),
	"type_of_bid":        regexp.MustCompile(`(?i)(?:Single|Two)[\s-]*(?:Packet|Part)\s+Bid`),
	"epbg_percentage":    regexp.MustCompile(`(?i)ePBG\s*[:\-]?\s*(\d+%)`),
	"epbg_duration":      regexp.MustCompile(`(?i)ePBG.*?Duration\s*[:\-]?\s*(\d+\s*(?:days?|weeks?|months?))`),
	"turnover_table":     regexp.MustCompile(`(?is)Minimum\s+Average\s+Annual\s+Turnover\s+of\s+the\s+bidder.*?\n\s*([\d,]+)\s*(?:Lakh|Crore)?\s*\(s\)?`),
	"oem_turnover_table": regexp.MustCompile(`(?is)OEM\s+Average\s+Turnover.*?\n\s*([\d,]+)\s*(?:Lakh|Crore)?\s*\(s\)?`),
	"experience_table":   regexp.MustCompile(`(?is)Years?\s+of\s+Past\s+Experience\s+Required.*?\n\s*(\d+)\s*Year\s*\(s\)?`),
	"mse_relaxation":     regexp.MustCompile(`(?is)MSE\s+Relaxation\s+for\s+Years.*?\n\s*(Yes|No|Complete|Partial|Exempt)\s*\|?\s*(Complete|Partial|Exempt)?`),
	"startup_relaxation": regexp.MustCompile(`(?is)Startup\s+Relaxation\s+for\s+Years.*?\n\s*(Yes|No|Complete|Partial|Exempt)\s*\|?\s*(Complete|Partial|Exempt)?`),
	"seller_documents":   regexp.MustCompile(`(?is)Document\s+required\s+from\s+seller\s*\n\s*(.*?)(?:\n\s*\*|\z)`),
}

// ExtractGeMFields runs the GeM-specific rule table: BoQ metadata, ePBG
// details, and the pre-qualification table.
func ExtractGeMFields(text string) Fields {
	out := Fields{}

	if m := gemPatterns["boq_title"].FindStringSubmatch(text); m != nil {
		out["boq_title"] = firstLine(m[1])
	}
	if m := gemPatterns["item_category"].FindStringSubmatch(text); m != nil {
		out["item_category"] = firstLine(m[1])
	}
	if m := gemPatterns["total_quantity"].FindStringSubmatch(text); m != nil {
		out["total_quantity"] = strings.TrimSpace(m[1])
	}
	if m := gemPatterns["type_of_bid"].FindString(text); m != "" {
		out["type_of_bid"] = strings.TrimSpace(m)
	}

	var epbg []string
	if m := gemPatterns["epbg_percentage"].FindStringSubmatch(text); m != nil {
		epbg = append(epbg, "Percentage: "+m[1])
	}
	if m := gemPatterns["epbg_duration"].FindStringSubmatch(text); m != nil {
		epbg = append(epbg, "Duration: "+m[1])
	}
	if len(epbg) > 0 {
		out["epbg_details"] = strings.Join(epbg, " | ")
	}

	for k, v := range extractGeMPreQualification(text) {
		out[k] = v
	}

	return out
}

// extractGeMPreQualification parses the GeM pre-qualification table.
func extractGeMPreQualification(text string) Fields {
	out := Fields{}

	if m := gemPatterns["turnover_table"].FindStringSubmatch(text); m != nil {
		out["turnover_requirement"] = "₹" + m[1] + " Lakh(s)"
	}
	if m := gemPatterns["oem_turnover_table"].FindStringSubmatch(text); m != nil {
		out["oem_turnover_requirement"] = "₹" + m[1] + " Lakh(s)"
	}
	if m := gemPatterns["experience_table"].FindStringSubmatch(text); m != nil {
		out["experience_required"] = m[1] + " Year(s)"
	}

	for field, key := range map[string]string{
		"mse_relaxation":     "mse_relaxation",
		"startup_relaxation": "startup_relaxation",
	} {
		m := gemPatterns[field].FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if m[2] != "" {
			out[key] = m[1] + " | " + m[2]
		} else {
			out[key] = m[1]
		}
	}

	if m := gemPatterns["seller_documents"].FindStringSubmatch(text); m != nil {
		var docs []string
		for _, d := range strings.Split(m[1], ",") {
			d = strings.TrimSpace(d)
			if len(d) > 2 {
				docs = append(docs, d)
			}
		}
		if len(docs) > 0 {
			out["documents_required"] = docs
		}
	}

	return out
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

package rules

import (
	"regexp"
	"strings"
)

var cpppPatterns = map[string]*regexp.Regexp{
	"date_and_time_of_issue":          regexp.MustCompile(`(?i)Date\s*&?\s*Time\s+of\s+Issue\s*[:\-]?\s*(.+)`),
	"due_date_and_time_of_submission": regexp.MustCompile(`(?i)Due\s+Date\s*&?\s*Time\s+of\s+Submission\s*[:\-]?\s*(.+)`),
	"envelope_1":                      regexp.MustCompile(`(?is)Envelope[\s-]*(?:1|One|I)\b.*?(?:Envelope[\s-]*(?:2|Two|II)|\z)`),
	"envelope_2":                      regexp.MustCompile(`(?is)Envelope[\s-]*(?:2|Two|II)\b.*?(?:Envelope[\s-]*(?:3|Three|III)|\z)`),
	"offline_submission":              regexp.MustCompile(`(?is)(?:Offline\s+Submission|Hardcopy|Physical\s+Submission).*?(?:\n\n|\z)`),
	"computer_system":                 regexp.MustCompile(`(?i)(?:Computer\s+System|Computer\s+Requirement)\s*[:\-]?\s*(.+)`),
	"broadband":                       regexp.MustCompile(`(?i)(?:Broadband|Internet\s+Connection|Bandwidth)\s*[:\-]?\s*(.+)`),
	"dsc":                             regexp.MustCompile(`(?i)(?:DSC|Digital\s+Signature\s+Certificate)\s*[:\-]?\s*(.+)`),
	"right_to_reject":                 regexp.MustCompile(`(?i)Right\s+to\s+Reject\s+(?:Bid|Bids)\s+(?:without\s+)?(?:Reason|Assigning\s+Reason)|(?:Tenders|Bids)\s+(?:can|may)\s+be\s+rejected\s+without\s+assigning\s+reason`),
	"split_work":                      regexp.MustCompile(`(?i)Right\s+to\s+Split\s+(?:Tender|Work|Project)|Work\s+may\s+be\s+split\s+(?:among|between)|Splitting\s+(?:of\s+)?(?:Tender|Work)`),
}

var docLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*[-•]\s*(.+?)$`),
	regexp.MustCompile(`^\s*\d+\.\s*(.+?)$`),
}

// ExtractCPPPFields runs the CPPP-specific rule table: labeled issue and
// submission dates, envelope document lists, bidder infrastructure
// requirements, and rejection/splitting clauses.
func ExtractCPPPFields(text string) Fields {
	out := Fields{}

	if m := cpppPatterns["date_and_time_of_issue"].FindStringSubmatch(text); m != nil {
		out["date_and_time_of_issue"] = strings.TrimSpace(m[1])
	}
	if m := cpppPatterns["due_date_and_time_of_submission"].FindStringSubmatch(text); m != nil {
		out["due_date_and_time_of_submission"] = strings.TrimSpace(m[1])
	}

	// Envelope 1 is the technical (online) packet, envelope 2 financial.
	if m := cpppPatterns["envelope_1"].FindString(text); m != "" {
		if docs := extractDocumentList(m); len(docs) > 0 {
			out["online_submission_documents"] = docs
		}
	}
	if m := cpppPatterns["offline_submission"].FindString(text); m != "" {
		if docs := extractDocumentList(m); len(docs) > 0 {
			out["offline_submission_documents"] = docs
		}
	}

	var infra []string
	for _, key := range []string{"computer_system", "broadband", "dsc"} {
		if m := cpppPatterns[key].FindStringSubmatch(text); m != nil {
			infra = append(infra, strings.TrimSpace(m[1]))
		}
	}
	if len(infra) > 0 {
		out["bidder_technical_infrastructure"] = strings.Join(infra, "; ")
	}

	if cpppPatterns["right_to_reject"].MatchString(text) {
		out["rejection_of_bid"] = "Yes"
	}
	if cpppPatterns["split_work"].MatchString(text) {
		out["splitting_of_work"] = "Yes"
	}

	return out
}

// extractDocumentList pulls document names from bulleted or numbered lines
// inside an envelope or submission section.
func extractDocumentList(section string) []string {
	var docs []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}
		for _, re := range docLinePatterns {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			doc := strings.TrimSpace(m[1])
			lower := strings.ToLower(doc)
			if len(doc) > 3 && lower != "instructions" && lower != "note" && lower != "notes" {
				docs = append(docs, doc)
			}
			break
		}
	}
	return docs
}

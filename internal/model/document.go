package model

// Document is one decoded input file: its name, full text, and any external
// document references discovered during decoding. Immutable once built.
type Document struct {
	Name string
	Text string
	Refs []string
}

// Chunk is a bounded slice of document text produced by the chunk planner.
// Index is preserved for human-readable labeling of partial results; the
// merge itself is order-insensitive.
type Chunk struct {
	Index int
	Text  string
}

// Portal labels selecting rule tables and prompt variants.
const (
	PortalGeM     = "GeM"
	PortalCPPP    = "CPPP"
	PortalGeneric = "Generic"
)

// Classification is the document-type decision for a run, computed once
// from the combined text and immutable afterward.
type Classification struct {
	Portal string
	Scores map[string]int
}

// MissingField describes one empty leaf found by a gap scan. Ephemeral:
// produced fresh each scan, never persisted.
type MissingField struct {
	Section  string
	Field    string
	Path     string
	Critical bool
}

// GapSummary aggregates a gap scan for logging and validation output.
type GapSummary struct {
	Total     int            `json:"total_missing"`
	Critical  int            `json:"critical_missing"`
	BySection map[string]int `json:"by_section"`
}

// ValidationSummary reports portal-required fields that remain unfilled
// after gap filling. A run with missing fields still succeeds; judgment is
// left to the caller.
type ValidationSummary struct {
	IsValid       bool     `json:"is_valid"`
	MissingFields []string `json:"missing_fields"`
	Warnings      []string `json:"warnings"`
}

// RunMetadata is the processing-metadata envelope attached to the final
// record under the reserved "_metadata" key.
type RunMetadata struct {
	DocumentType         string            `json:"document_type"`
	FilesProcessed       []string          `json:"files_processed"`
	EstimatedTokens      int               `json:"estimated_tokens"`
	FieldsFilledByRefill int               `json:"fields_filled_by_refill"`
	Strategy             string            `json:"strategy"`
	Validation           ValidationSummary `json:"validation"`
}

// TokenUsage tracks capability token consumption across a run.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// Add accumulates usage from another measurement.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

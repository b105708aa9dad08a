package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// malformedExcerptLen bounds the response excerpt carried by a
// MalformedExtractionError.
const malformedExcerptLen = 100

// MalformedExtractionError reports a capability response that could not be
// parsed as JSON even after recovery attempts. Excerpt is truncated.
type MalformedExtractionError struct {
	Excerpt string
}

func (e *MalformedExtractionError) Error() string {
	return fmt.Sprintf("malformed extraction response: %s...", e.Excerpt)
}

// newMalformedError builds a MalformedExtractionError from the raw response.
func newMalformedError(raw string) *MalformedExtractionError {
	excerpt := raw
	if len(excerpt) > malformedExcerptLen {
		excerpt = excerpt[:malformedExcerptLen]
	}
	return &MalformedExtractionError{Excerpt: excerpt}
}

// DecodeResponse parses a capability response into a generic JSON object.
// Recovery, in order: strip markdown code fences, then re-escape literal
// newlines inside string values. Failing both, a MalformedExtractionError
// with a truncated excerpt is returned.
func DecodeResponse(raw string) (map[string]any, error) {
	clean := stripFences(strings.TrimSpace(raw))

	var out map[string]any
	if err := json.Unmarshal([]byte(clean), &out); err == nil {
		return out, nil
	}

	repaired := escapeBareNewlines(clean)
	if err := json.Unmarshal([]byte(repaired), &out); err == nil {
		return out, nil
	}

	return nil, newMalformedError(raw)
}

// stripFences removes a surrounding markdown code block, handling both
// ```json and bare ``` fences. Text outside the fence is discarded.
func stripFences(s string) string {
	if idx := strings.Index(s, "```json"); idx >= 0 {
		rest := s[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return s
}

// escapeBareNewlines replaces literal newlines occurring inside JSON string
// values with \n escapes. Newlines in structural positions (between
// members) are left alone.
func escapeBareNewlines(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
			b.WriteRune(r)
		case r == '\\':
			escaped = true
			b.WriteRune(r)
		case r == '"':
			inString = !inString
			b.WriteRune(r)
		case r == '\n' && inString:
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

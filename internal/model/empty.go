package model

import "strings"

// emptyTokens are string values the gap scanner treats as semantically
// empty. Comparison is case-insensitive after trimming.
var emptyTokens = map[string]struct{}{
	"":              {},
	"not mentioned": {},
	"n/a":           {},
	"not specified": {},
	"not available": {},
	"tbd":           {},
}

// stopTokens is the superset of placeholder values stripped from the final
// output tree.
var stopTokens = map[string]struct{}{
	"":              {},
	"not found":     {},
	"not mentioned": {},
	"not specified": {},
	"not available": {},
	"n/a":           {},
	"tbd":           {},
	"null":          {},
	"none":          {},
}

// IsEmptyToken reports whether a string counts as an empty placeholder for
// gap analysis and merge purposes.
func IsEmptyToken(s string) bool {
	_, ok := emptyTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// IsStopToken reports whether a string should be stripped from the final
// cleaned output.
func IsStopToken(s string) bool {
	_, ok := stopTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// IsEmptyValue reports whether a Value is empty under the placeholder-token
// definition: an empty-token string, an empty list, a list of empty tokens,
// or an empty section.
func IsEmptyValue(v Value) bool {
	switch v.Kind {
	case KindString:
		return IsEmptyToken(v.Str)
	case KindList:
		for _, it := range v.List {
			if !IsEmptyToken(it) {
				return false
			}
		}
		return true
	case KindSection:
		return len(v.Section) == 0
	}
	return true
}

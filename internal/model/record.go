package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ValueKind discriminates the variants a Record leaf or node can hold.
type ValueKind int

const (
	// KindString is a scalar string leaf.
	KindString ValueKind = iota
	// KindList is a list-of-strings leaf.
	KindList
	// KindSection is a nested Record node.
	KindSection
)

// Value is a tagged variant: a string leaf, a string-list leaf, or a nested
// section. LLM output is never trusted to have the right shape, so every
// Value entering a Record goes through Canonicalize first.
type Value struct {
	Kind    ValueKind
	Str     string
	List    []string
	Section Record
}

// Record is the nested structured-extraction result at any pipeline stage.
// Mutation is by replacement: stages build a new Record rather than editing
// one in place.
type Record map[string]Value

// String returns a string-leaf Value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// List returns a list-leaf Value.
func List(items ...string) Value { return Value{Kind: KindList, List: items} }

// Section returns a nested-section Value.
func Section(r Record) Value { return Value{Kind: KindSection, Section: r} }

// MarshalJSON emits the natural JSON shape for each variant.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindSection:
		if v.Section == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.Section)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON accepts any JSON shape and maps it onto the closest variant.
// Scalars become string leaves, arrays become string-list leaves, objects
// become sections.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

// fromAny maps a decoded JSON value onto a Value variant.
func fromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return String("")
	case string:
		return String(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, it := range t {
			if s := CoerceString(it); s != "" {
				items = append(items, s)
			}
		}
		return List(items...)
	case map[string]any:
		sec := make(Record, len(t))
		for k, val := range t {
			sec[k] = fromAny(val)
		}
		return Section(sec)
	default:
		return String(CoerceString(t))
	}
}

// CoerceString flattens an arbitrary decoded JSON value into a scalar
// string. Lists join with "; ", objects serialize as compact JSON. A value
// that fails to serialize coerces to "" rather than propagating an error.
func CoerceString(raw any) string {
	switch t := raw.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			if s := CoerceString(it); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// coerceList flattens an arbitrary decoded JSON value into a string list.
func coerceList(raw any) []string {
	switch t := raw.(type) {
	case nil:
		return nil
	case []any:
		items := make([]string, 0, len(t))
		for _, it := range t {
			if s := CoerceString(it); s != "" {
				items = append(items, s)
			}
		}
		return items
	default:
		s := CoerceString(raw)
		if s == "" {
			return nil
		}
		return []string{s}
	}
}

// Canonicalize maps raw decoded JSON onto the shape of template. Every leaf
// in the result is a string or string list matching the template's variant
// for that key; nested objects where a scalar is expected are flattened,
// scalars where a list is expected become single-element lists. Keys absent
// from the template are dropped. Missing keys take the template default.
func Canonicalize(raw map[string]any, template Record) Record {
	out := make(Record, len(template))
	for key, tmpl := range template {
		rv, ok := raw[key]
		if !ok {
			out[key] = emptyLike(tmpl)
			continue
		}
		switch tmpl.Kind {
		case KindString:
			out[key] = String(CoerceString(rv))
		case KindList:
			out[key] = List(coerceList(rv)...)
		case KindSection:
			sub, ok := rv.(map[string]any)
			if !ok {
				out[key] = emptyLike(tmpl)
				continue
			}
			out[key] = Section(Canonicalize(sub, tmpl.Section))
		}
	}
	return out
}

// emptyLike returns the zero Value of the same variant as tmpl.
func emptyLike(tmpl Value) Value {
	switch tmpl.Kind {
	case KindList:
		return List()
	case KindSection:
		return Section(Canonicalize(map[string]any{}, tmpl.Section))
	default:
		return String("")
	}
}

// ToMap converts a Record to a plain map for JSON serialization alongside
// non-Record data such as the metadata envelope.
func (r Record) ToMap() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		switch v.Kind {
		case KindString:
			out[k] = v.Str
		case KindList:
			if v.List == nil {
				out[k] = []string{}
			} else {
				out[k] = v.List
			}
		case KindSection:
			out[k] = v.Section.ToMap()
		}
	}
	return out
}

// Clone performs a deep copy. Stages that replace a Record start from a
// clone so the input record stays untouched.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		switch v.Kind {
		case KindList:
			items := make([]string, len(v.List))
			copy(items, v.List)
			out[k] = List(items...)
		case KindSection:
			out[k] = Section(v.Section.Clone())
		default:
			out[k] = v
		}
	}
	return out
}

// Get resolves a dot-delimited FieldPath, e.g. "key_dates.bid_end".
// The second return is false when any path segment is absent or a
// non-section value is traversed.
func (r Record) Get(path string) (Value, bool) {
	segs := strings.Split(path, ".")
	cur := r
	for i, seg := range segs {
		v, ok := cur[seg]
		if !ok {
			return Value{}, false
		}
		if i == len(segs)-1 {
			return v, true
		}
		if v.Kind != KindSection {
			return Value{}, false
		}
		cur = v.Section
	}
	return Value{}, false
}

// Set writes a value at a dot-delimited path, creating intermediate
// sections as needed.
func (r Record) Set(path string, v Value) {
	segs := strings.Split(path, ".")
	cur := r
	for i, seg := range segs {
		if i == len(segs)-1 {
			cur[seg] = v
			return
		}
		next, ok := cur[seg]
		if !ok || next.Kind != KindSection {
			next = Section(Record{})
			cur[seg] = next
		}
		cur = next.Section
	}
}

// SortedKeys returns the record's keys in lexical order, for deterministic
// iteration in reports and tests.
func (r Record) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

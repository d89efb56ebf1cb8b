// Package extract reads collaborator responses defensively. The parsing and
// job-extraction services have shipped several response shapes over time
// (snake_case, camelCase, extra nesting), so every logical field is resolved
// through a priority-ordered list of candidate paths instead of a fixed
// schema. Missing fields resolve to empty values, never to an error: the
// workflow degrades to manual entry rather than failing the step.
package extract

import "strings"

// A Path names one candidate location of a field as a dot-joined key chain,
// e.g. "personal_info.first_name".
type Path string

func (p Path) keys() []string {
	return strings.Split(string(p), ".")
}

// lookup descends the key chain through nested maps. Only map[string]any
// nesting is followed; anything else terminates the walk.
func lookup(m map[string]any, p Path) (any, bool) {
	keys := p.keys()
	cur := any(m)
	for _, key := range keys {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String resolves the first candidate path holding a non-empty string.
func String(m map[string]any, paths ...Path) string {
	for _, p := range paths {
		if v, ok := lookup(m, p); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// StringSlice resolves the first candidate path holding a non-empty array,
// keeping only string elements. A missing field yields an empty (non-nil)
// slice so downstream JSON stays `[]` rather than `null`.
func StringSlice(m map[string]any, paths ...Path) []string {
	for _, p := range paths {
		v, ok := lookup(m, p)
		if !ok {
			continue
		}
		arr, ok := v.([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{}
}

// MapSlice resolves the first candidate path holding an array of objects.
func MapSlice(m map[string]any, paths ...Path) []map[string]any {
	for _, p := range paths {
		v, ok := lookup(m, p)
		if !ok {
			continue
		}
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(arr))
		for _, item := range arr {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// Unwrap peels a single wrapper object off a response when the payload was
// nested under one of the given keys, e.g. {"data": {...}} or {"job": {...}}.
// The original map is returned untouched when no wrapper key is present.
func Unwrap(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if inner, ok := v.(map[string]any); ok {
				return inner
			}
		}
	}
	return m
}

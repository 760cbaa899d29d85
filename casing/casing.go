// Package casing rewrites wire keys between snake_case and medial capitals.
//
// The rewrite is shallow on purpose: API payloads are transformed at the top
// level only, and nested payload keys pass through untouched. Consumers rely
// on that asymmetry, so CamelizeKeys must never recurse.
package casing

import (
	"strings"
	"unicode"
)

// Camelize converts a single snake_case key to medial capitals. Every
// underscore is dropped and the character immediately following it is
// upper-cased. Keys without an underscore are returned unchanged, including
// keys that already use medial capitals.
func Camelize(key string) string {
	if !strings.ContainsRune(key, '_') {
		return key
	}

	var b strings.Builder
	b.Grow(len(key))
	upperNext := false
	for _, r := range key {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelizeKeys returns a copy of m with every top-level key camelized.
// Values are carried over as-is, so nested maps and slices keep their
// original keys. If two keys collapse to the same camelized form, one of
// them wins; which one is unspecified.
func CamelizeKeys(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[Camelize(k)] = v
	}
	return out
}

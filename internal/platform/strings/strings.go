// Package strings provides small string helpers shared across the tracker
package strings

import (
	std "strings"

	"golang.org/x/text/unicode/norm"
)

// Contains reports whether sub is within s
func Contains(s, sub string) bool { return std.Contains(s, sub) }

// EmptyToNil returns empty string if s is all whitespace, otherwise returns s
func EmptyToNil(s string) string {
	if std.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Ptr returns a pointer to s, or nil if s is empty
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns "" if ps is nil, else *ps
func Deref(ps *string) string {
	if ps == nil {
		return ""
	}
	return *ps
}

// FirstLine returns s up to the first newline, trimmed
func FirstLine(s string) string {
	if i := std.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return std.TrimSpace(s)
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
// Input is NFC-normalized first so combining sequences never split mid-glyph
func Truncate(s string, n int) string {
	s = norm.NFC.String(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return std.TrimSpace(string(runes[:n])) + "…"
}

// MustString returns s if it has non-whitespace content otherwise panics.
// name is used in the panic message so you can tell what was missing
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

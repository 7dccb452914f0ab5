// File: stringx.go
// Title: Core String Utility Functions
// Description: Blank checks, case-insensitive containment, common prefixes,
//              padding and word wrapping.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-15

package stringx

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsBlank returns true if the string is empty or contains only whitespace.
func IsBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// IsNotBlank is the inverse of IsBlank.
func IsNotBlank(s string) bool {
	return !IsBlank(s)
}

// ContainsIgnoreCase returns true if substr is within s, ignoring case.
func ContainsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// HasPrefixIgnoreCase reports whether s begins with prefix, ignoring case.
func HasPrefixIgnoreCase(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

// CommonPrefix returns the longest prefix shared by all values. Comparison is
// case-sensitive unless foldCase is set, in which case the casing of the first
// value is kept.
func CommonPrefix(values []string, foldCase bool) string {
	if len(values) == 0 {
		return ""
	}
	prefix := []rune(values[0])
	for _, v := range values[1:] {
		runes := []rune(v)
		n := 0
		for n < len(prefix) && n < len(runes) && sameRune(prefix[n], runes[n], foldCase) {
			n++
		}
		prefix = prefix[:n]
		if n == 0 {
			break
		}
	}
	return string(prefix)
}

func sameRune(a, b rune, foldCase bool) bool {
	if a == b {
		return true
	}
	return foldCase && unicode.ToLower(a) == unicode.ToLower(b)
}

// PadRight pads s to width runes with pad. Longer strings are returned as-is.
func PadRight(s string, width int, pad rune) string {
	count := utf8.RuneCountInString(s)
	if count >= width {
		return s
	}
	return s + strings.Repeat(string(pad), width-count)
}

// WordWrap breaks text into lines of at most width runes, splitting on
// whitespace. Every line after the first is prefixed with indent. Words longer
// than width are kept whole on their own line.
func WordWrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width <= 0 {
		return strings.Join(words, " ")
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		wordLen := utf8.RuneCountInString(word)
		switch {
		case i == 0:
		case lineLen+1+wordLen > width:
			b.WriteString("\n")
			b.WriteString(indent)
			lineLen = 0
		default:
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(word)
		lineLen += wordLen
	}
	return b.String()
}

// FirstNonBlank returns the first value that is not blank.
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if !IsBlank(v) {
			return v
		}
	}
	return ""
}

// Package sanitize cleans extracted text before it reaches chunking,
// embedding or generation.
//
// Extraction libraries are not trusted to emit valid text: PDFs in
// particular yield stray control bytes and broken surrogate sequences.
// Every function here is pure, never fails and is idempotent.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Clean removes invalid UTF-8 sequences (including encoded surrogate halves)
// and control characters other than tab, line feed and carriage return, then
// composes the result to NFC. Line structure is preserved so paragraph and
// line separators survive for chunking.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToValidUTF8(text, "")

	t := transform.Chain(runes.Remove(runes.Predicate(isStrayControl)), norm.NFC)
	cleaned, _, err := transform.String(t, text)
	if err != nil {
		// transform only fails on ill-formed input, which ToValidUTF8 has ruled out
		return norm.NFC.String(strings.Map(dropStrayControl, text))
	}
	return cleaned
}

// Normalize cleans text and collapses every run of whitespace to a single
// space, trimming leading and trailing whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(Clean(text)), " ")
}

// NormalizeAll applies Normalize to each element and drops results that are empty.
func NormalizeAll(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, text := range texts {
		if n := Normalize(text); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func isStrayControl(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	return unicode.IsControl(r) || r == unicode.ReplacementChar
}

func dropStrayControl(r rune) rune {
	if isStrayControl(r) {
		return -1
	}
	return r
}

// Package dedup detects duplicate occurrences, installments and clients before
// they are created. Results are tiers the caller acts on, not errors.
package dedup

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// MinTitleSimilarityLength guards title containment against trivial substrings.
	MinTitleSimilarityLength = 4

	// MinNameSimilarityLength guards client-name containment.
	MinNameSimilarityLength = 5
)

// NormalizeTitle trims, lowercases and collapses internal whitespace.
// Input is NFC-normalized first so composed and decomposed accents compare equal.
func NormalizeTitle(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Similar reports whether two strings are equal after normalization, or one
// contains the other when both are at least minLen characters long.
func Similar(a, b string, minLen int) bool {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == nb {
		return true
	}
	if utf8.RuneCountInString(na) < minLen || utf8.RuneCountInString(nb) < minLen {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// DigitsOnly strips everything but ASCII digits, e.g. from a formatted CNPJ.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

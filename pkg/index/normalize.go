package index

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Normalize lowercases and trims a field or query for exact comparisons.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Words splits a value into its normalized words. Runs of non-word characters
// act as a single separator.
func Words(s string) []string {
	return strings.Fields(nonWord.ReplaceAllString(Normalize(s), " "))
}

// Tokens returns the words of s that are long enough to be indexed.
func Tokens(s string) []string {
	words := Words(s)
	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= MinTokenLen {
			out = append(out, w)
		}
	}
	return out
}

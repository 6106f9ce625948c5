// Package lang derives the token forms the inverted index is built from:
// stemmed words, character n-grams, and word-initial markers.
//
// Stemming is delegated to the Snowball/Porter2 English stemmer
// (github.com/kljensen/snowball/english) rather than a hand-rolled Porter
// implementation, so that inflections such as "running"/"runs" collapse the
// same way a standard Porter/English-Snowball stemmer would.
package lang

import (
	"strings"

	snowballeng "github.com/kljensen/snowball/english"
)

// CleanWords lowercases s, replaces every non-alphanumeric rune with a
// space, splits on single-space boundaries, drops tokens shorter than two
// characters, and stems the rest. Tokens are returned in input order with
// duplicates preserved: a word repeated in the source text produces a
// repeated (and therefore more heavily weighted) token.
func CleanWords(s string) []string {
	cleaned := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			cleaned[i] = c
		case c >= 'A' && c <= 'Z':
			cleaned[i] = c - 'A' + 'a'
		default:
			cleaned[i] = ' '
		}
	}

	words := strings.Split(string(cleaned), " ")
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		tokens = append(tokens, snowballeng.Stem(w, false))
	}
	return tokens
}

// FirstCharTokens splits the raw string s on single-space boundaries and
// emits a "$"+lowercase(first rune) marker for every non-empty word. Empty
// words produced by consecutive spaces are skipped rather than emitting a
// degenerate bare "$" token (spec.md §9 open question 2, resolved per the
// REDESIGN FLAG in favor of guarding empty words).
func FirstCharTokens(s string) []string {
	words := strings.Split(s, " ")
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		first := strings.ToLower(string([]rune(w)[0]))
		tokens = append(tokens, "$"+first)
	}
	return tokens
}

// Gramify produces the character-n-gram and word-initial tokens used for
// prefix/substring matching. Behavior is keyed on the raw byte length of s:
//
//	len == 0: no tokens.
//	len == 1: a single "$"+s marker.
//	len == 2: the two boundary markers "$"+s[0] and s[1]+"$".
//	len >= 3: character 3-grams over the space-joined stemmed words of s
//	  (the join space participates in the sliding window, so grams can
//	  straddle word boundaries — this is intentional), plus the lowercase
//	  first-char markers of the raw string.
func Gramify(s string) []string {
	switch len(s) {
	case 0:
		return nil
	case 1:
		return []string{"$" + s}
	case 2:
		return []string{"$" + s[0:1], s[1:2] + "$"}
	}

	prepared := strings.Join(CleanWords(s), " ")
	tokens := make([]string, 0, len(prepared)+len(s)/2)

	runes := []rune(prepared)
	for i := 0; i+3 <= len(runes); i++ {
		tokens = append(tokens, string(runes[i:i+3]))
	}

	tokens = append(tokens, FirstCharTokens(strings.ToLower(s))...)
	return tokens
}

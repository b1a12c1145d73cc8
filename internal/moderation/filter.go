package moderation

import (
	"strings"
	"unicode"
)

// Filter screens user-submitted text against a banned-word list. Matching is
// case-insensitive and token-based, so "Scam" and "scam," both match "scam"
// while "scampi" does not.
type Filter struct {
	words map[string]struct{}
}

func NewFilter(words []string) *Filter {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return &Filter{words: set}
}

// Scan returns the banned terms found in text, each at most once, in order of
// first appearance. An empty result means the text is clean.
func (f *Filter) Scan(text string) []string {
	if len(f.words) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var flagged []string
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, tok := range tokens {
		if _, banned := f.words[tok]; !banned {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		flagged = append(flagged, tok)
	}
	return flagged
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textcase implements the APA capitalization rules: title case for
// headings and container names, and sentence case for titles of works.
package textcase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSmallWords are the minor words APA title case keeps lowercase
// unless they start the heading or follow a colon.
var DefaultSmallWords = []string{
	"and", "or", "the", "of", "in", "on", "for", "to", "a", "an",
	"by", "at", "with", "from", "but", "as", "if",
}

// titleSeparators split a heading into tokens. Separators are kept as their
// own tokens so the output preserves the input's punctuation exactly.
const titleSeparators = " :-()"

// Caser applies title case with a fixed small-word set. A Caser is immutable
// after construction and safe for concurrent use.
type Caser struct {
	small map[string]bool
}

// New returns a Caser that keeps smallWords lowercase. An empty list selects
// DefaultSmallWords.
func New(smallWords []string) *Caser {
	if len(smallWords) == 0 {
		smallWords = DefaultSmallWords
	}
	small := make(map[string]bool, len(smallWords))
	for _, w := range smallWords {
		small[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return &Caser{small: small}
}

// IsSmallWord reports whether w (any case) is in the small-word set.
func (c *Caser) IsSmallWord(w string) bool {
	return c.small[strings.ToLower(w)]
}

// Title converts s to APA title case. The first word and any word after a
// colon are capitalized; other small words are lowercased; every other
// alphabetic token gets an uppercase first letter with the rest untouched.
// Tokens containing non-letters pass through unchanged. Title is idempotent.
func (c *Caser) Title(s string) string {
	lower := cases.Lower(language.Und)
	var b strings.Builder
	b.Grow(len(s))
	capNext := true
	for _, tok := range tokenize(s, titleSeparators) {
		switch {
		case tok == ":":
			capNext = true
		case len(tok) == 1 && strings.ContainsRune(titleSeparators, rune(tok[0])):
			// Other separators keep the pending capitalization.
		default:
			if isAlpha(tok) {
				switch {
				case capNext:
					tok = upperFirst(tok)
				case c.IsSmallWord(tok):
					tok = lower.String(tok)
				default:
					tok = upperFirst(tok)
				}
			}
			capNext = false
		}
		b.WriteString(tok)
	}
	return b.String()
}

// SmartSentence converts s to sentence case: the first word is capitalized,
// words written entirely in capitals are kept as acronyms, and every other
// word is lowercased. Whitespace runs collapse to single spaces. Blank input
// is returned unchanged.
func SmartSentence(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	lower := cases.Lower(language.Und)
	words := strings.Fields(trimmed)
	for i, w := range words {
		if IsUpperWord(w) {
			continue
		}
		w = lower.String(w)
		if i == 0 {
			w = upperFirst(w)
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}

// CapitalizeFirst trims s and upper-cases its first letter, leaving the rest
// as typed.
func CapitalizeFirst(s string) string {
	return upperFirst(strings.TrimSpace(s))
}

// IsUpperWord reports whether w contains at least one letter and no
// lowercase letters ("NASA", "U.S.", "A").
func IsUpperWord(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// IsTitleCased reports whether every word of s that contains a letter starts
// its first letter in upper case, and at least one such word exists.
func IsTitleCased(s string) bool {
	found := false
	for _, w := range strings.Fields(s) {
		for _, r := range w {
			if !unicode.IsLetter(r) {
				continue
			}
			if !unicode.IsUpper(r) && !unicode.IsTitle(r) {
				return false
			}
			found = true
			break
		}
	}
	return found
}

// tokenize splits s on any rune of seps, keeping each separator as its own
// single-rune token.
func tokenize(s, seps string) []string {
	var tokens []string
	start := 0
	for i, r := range s {
		if strings.ContainsRune(seps, r) {
			if i > start {
				tokens = append(tokens, s[start:i])
			}
			tokens = append(tokens, s[i:i+utf8.RuneLen(r)])
			start = i + utf8.RuneLen(r)
		}
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

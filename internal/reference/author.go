// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reference

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultOrganizationKeywords mark a comma-free author as a group author.
var DefaultOrganizationKeywords = []string{
	"university", "college", "association", "society", "department",
	"center", "institute", "foundation", "corporation", "inc",
	"ltd", "llc", "government", "council", "bureau", "office", "press",
	"organization", "organisation", "agency", "ministry", "commission",
	"committee", "board", "service", "services", "administration",
}

var (
	etAl        = regexp.MustCompile(`(?i),?\s*\bet\s+al\b\.?`)
	andSplit    = regexp.MustCompile(`,?\s+(?:and|&)\s+|\s*&\s*`)
	hasAnd      = regexp.MustCompile(`(?i)\s(?:and|&)\s|&`)
	initialsTok = regexp.MustCompile(`^(?:\p{Lu}\.(?:\s*-\s*\p{Lu}\.)?\s*)+$|^\p{Lu}{1,3}$`)
	givenTok    = regexp.MustCompile(`^\p{Lu}[\p{L}'’-]*(?:\s+\p{Lu}[\p{L}'’.-]*)*$`)
)

// maxListedAuthors is the number of authors listed in full before the
// list is elided down to the first 19 and the last.
const maxListedAuthors = 20

// FormatAuthorList joins formatted author names by the APA 7 rule: one
// name alone; two as "A, & B"; three to twenty as "A, B, ..., & Z"; more
// than twenty as the first nineteen, an ellipsis, and the last author.
func FormatAuthorList(names []string) string {
	switch n := len(names); {
	case n == 0:
		return ""
	case n == 1:
		return names[0]
	case n == 2:
		return names[0] + ", & " + names[1]
	case n <= maxListedAuthors:
		return strings.Join(names[:n-1], ", ") + ", & " + names[n-1]
	default:
		return strings.Join(names[:maxListedAuthors-1], ", ") + ", ..., " + names[n-1]
	}
}

// formatAuthors turns the text before the date anchor into an APA author
// list. It returns "" when no name could be formatted.
func (p *Parser) formatAuthors(s string) string {
	s = etAl.ReplaceAllString(s, "")
	s = strings.Trim(strings.TrimSpace(s), ",;")
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, ",;") && (p.hasOrgKeyword(s) || (!hasAnd.MatchString(s) && p.isGroup(s))) {
		return groupName(s)
	}

	var names []string
	for _, chunk := range splitAuthorChunks(s) {
		for _, raw := range splitNames(chunk) {
			if name := p.FormatName(raw); name != "" {
				names = append(names, name)
			}
		}
	}
	return FormatAuthorList(names)
}

// splitAuthorChunks splits on semicolons, or else on "and"/"&" joiners.
func splitAuthorChunks(s string) []string {
	var parts []string
	if strings.Contains(s, ";") {
		parts = strings.Split(s, ";")
	} else {
		parts = andSplit.Split(s, -1)
	}
	var out []string
	for _, part := range parts {
		if part = strings.Trim(strings.TrimSpace(part), ","); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitNames splits a comma-separated chunk into individual names. A chunk
// made of alternating surname and initials (or given name) tokens is read
// as "Last, F." pairs; anything else is one name per token.
func splitNames(chunk string) []string {
	var tokens []string
	for _, t := range strings.Split(chunk, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) < 2 || len(tokens)%2 != 0 {
		return tokens
	}

	allInitials, allGiven, singleSurnames := true, true, true
	for i := 0; i < len(tokens); i += 2 {
		surname, given := tokens[i], tokens[i+1]
		if !initialsTok.MatchString(given) {
			allInitials = false
		}
		if !givenTok.MatchString(given) {
			allGiven = false
		}
		if len(strings.Fields(surname)) != 1 {
			singleSurnames = false
		}
	}
	if !allInitials && !(allGiven && singleSurnames) {
		return tokens
	}
	pairs := make([]string, 0, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		pairs = append(pairs, tokens[i]+", "+tokens[i+1])
	}
	return pairs
}

// FormatName formats one author as "Surname, F. M.". Group authors get a
// single trailing period; a bare surname is returned as is.
func (p *Parser) FormatName(name string) string {
	name = strings.Trim(strings.TrimSpace(name), ",")
	if name == "" {
		return ""
	}
	if p.isGroup(name) {
		return groupName(name)
	}
	var last, given string
	if before, after, ok := strings.Cut(name, ","); ok {
		last, given = strings.TrimSpace(before), strings.TrimSpace(after)
	} else {
		words := strings.Fields(name)
		last = words[len(words)-1]
		given = strings.Join(words[:len(words)-1], " ")
	}
	last = strings.TrimRight(last, ".")

	initials := initialsOf(given)
	if initials == "" {
		return last
	}
	return last + ", " + initials
}

// initialsOf reduces given names to initials: "Jean-Luc" becomes "J.-L.",
// run-together capitals "JM" become "J. M.".
func initialsOf(given string) string {
	var out []string
	spaced := strings.ReplaceAll(strings.ReplaceAll(given, ".", ". "), ". -", ".-")
	for _, word := range strings.Fields(spaced) {
		word = strings.Trim(word, ".")
		if word == "" {
			continue
		}
		switch {
		case strings.Contains(word, "-"):
			var parts []string
			for _, part := range strings.Split(word, "-") {
				if ini := initial(strings.Trim(part, ".")); ini != "" {
					parts = append(parts, ini)
				}
			}
			if len(parts) > 0 {
				out = append(out, strings.Join(parts, "-"))
			}
		case utf8.RuneCountInString(word) > 1 && isUpperAlpha(word):
			for _, r := range word {
				out = append(out, string(r)+".")
			}
		default:
			if ini := initial(word); ini != "" {
				out = append(out, ini)
			}
		}
	}
	return strings.Join(out, " ")
}

func initial(word string) string {
	r, _ := utf8.DecodeRuneInString(word)
	if !unicode.IsLetter(r) {
		return ""
	}
	return string(unicode.ToUpper(r)) + "."
}

func isUpperAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// isGroup reports whether a comma-free name reads as an organization: it
// has more than one word and either contains an organization keyword or
// has more than three words with at most one starting in lower case.
// Three capitalized words without a keyword read as "First Middle Last".
func (p *Parser) isGroup(name string) bool {
	if strings.Contains(name, ",") {
		return false
	}
	words := strings.Fields(name)
	if len(words) < 2 {
		return false
	}
	if p.hasOrgKeyword(name) {
		return true
	}
	if len(words) <= 3 {
		return false
	}
	lower := 0
	for _, w := range words {
		if r, _ := utf8.DecodeRuneInString(w); unicode.IsLower(r) {
			lower++
		}
	}
	return lower <= 1
}

func (p *Parser) hasOrgKeyword(name string) bool {
	for _, w := range strings.Fields(name) {
		if p.orgKeywords[strings.ToLower(strings.Trim(w, ".,;:()"))] {
			return true
		}
	}
	return false
}

func groupName(name string) string {
	return strings.TrimRight(strings.Join(strings.Fields(name), " "), ".") + "."
}

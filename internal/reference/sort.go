// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reference

import (
	"regexp"
	"sort"
	"strings"
)

var leadingArticle = regexp.MustCompile(`^(?:a|an|the)\s+`)

// SortKey derives the ordering key of a raw reference line: the text before
// the date anchor, lowercased, with a leading "a", "an", or "the" removed
// when the first clause has no comma, and trailing periods and spaces
// trimmed.
func SortKey(ref string) string {
	s := strings.TrimSpace(zeroWidth.Replace(ref))
	if loc := dateAnchor.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if m := leadingArticle.FindString(s); m != "" {
		first, _, _ := strings.Cut(s, ".")
		if !strings.Contains(first, ",") {
			s = s[len(m):]
		}
	}
	return strings.TrimRight(s, ". ")
}

// Sort returns the reference lines ordered by SortKey. The sort is stable:
// lines with equal keys keep their input order. refs is not modified.
func Sort(refs []string) []string {
	type keyed struct {
		key  string
		line string
	}
	items := make([]keyed, len(refs))
	for i, r := range refs {
		items[i] = keyed{key: SortKey(r), line: r}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].key < items[j].key })

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.line
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns each body line a structural kind: heading level
// 1, 2, or 3, keywords line, block quote, or ordinary paragraph.
//
// Classification is a pure function of one line. Rules are applied in
// priority order:
//
//  1. empty after trimming: empty
//  2. more than BlockQuoteWords words: block_quote
//  3. starts with "keywords:" (any case): keywords
//  4. exactly one of the level-1 vocabulary words: heading_level_1
//  5. title-cased as typed, fewer than HeadingMaxWords words, no trailing
//     period: heading_level_3 when it ends with a colon, else heading_level_2
//  6. otherwise: body_paragraph
package classify

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pdiddy/apa-formatter/internal/textcase"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

// Heading1Vocabulary lists the section names that always render as level-1
// headings.
var Heading1Vocabulary = []string{"abstract", "introduction", "references", "discussion", "conclusion"}

// markupTag matches an opening, closing, or self-closing tag from the set
// that shows up in text pasted from web pages. Attributes must have values,
// so prose like "a<b and c>d" is not read as a tag.
var markupTag = regexp.MustCompile(`(?i)</?(?:a|abbr|b|big|br|cite|code|del|div|em|font|i|ins|kbd|mark|p|q|s|script|small|span|strike|strong|style|sub|sup|u)(?:\s+[\w:-]+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'<>=]+))*\s*/?>`)

// Classifier classifies body lines. It is immutable after New and safe for
// concurrent use.
type Classifier struct {
	blockQuoteWords int
	headingMaxWords int
	vocabulary      map[string]bool
	policy          *bluemonday.Policy
}

// New builds a Classifier from the formatter thresholds. Zero values take
// the defaults.
func New(cfg types.FormatterConfig) *Classifier {
	cfg = cfg.WithDefaults()
	vocab := make(map[string]bool, len(Heading1Vocabulary))
	for _, w := range Heading1Vocabulary {
		vocab[w] = true
	}
	return &Classifier{
		blockQuoteWords: cfg.BlockQuoteWords,
		headingMaxWords: cfg.HeadingMaxWords,
		vocabulary:      vocab,
		policy:          bluemonday.StrictPolicy(),
	}
}

// Classify returns the kind of line together with its cleaned text: trimmed,
// with any inline markup tags removed.
func (c *Classifier) Classify(line string) types.ClassifiedLine {
	text := c.Clean(line)
	return types.ClassifiedLine{Kind: c.kind(text), Text: text}
}

// ClassifyAll classifies lines in order.
func (c *Classifier) ClassifyAll(lines []string) []types.ClassifiedLine {
	out := make([]types.ClassifiedLine, len(lines))
	for i, l := range lines {
		out[i] = c.Classify(l)
	}
	return out
}

// Clean trims line and strips inline HTML tags pasted in with the text
// ("<b>Method</b>" becomes "Method"). Lines without such tags are only
// trimmed.
func (c *Classifier) Clean(line string) string {
	line = strings.TrimSpace(line)
	if !markupTag.MatchString(line) {
		return line
	}
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(line)))
}

func (c *Classifier) kind(text string) types.LineKind {
	if text == "" {
		return types.KindEmpty
	}
	words := len(strings.Fields(text))
	if words > c.blockQuoteWords {
		return types.KindBlockQuote
	}
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "keywords:") {
		return types.KindKeywords
	}
	if c.vocabulary[lower] {
		return types.KindHeading1
	}
	if words < c.headingMaxWords && !strings.HasSuffix(text, ".") && textcase.IsTitleCased(text) {
		if strings.HasSuffix(text, ":") {
			return types.KindHeading3
		}
		return types.KindHeading2
	}
	return types.KindBodyParagraph
}

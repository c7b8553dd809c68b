// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits the ordered input lines into the four sections of
// an APA paper: title page, abstract, body, and references.
package segment

import (
	"regexp"
	"strings"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

// Segmenter splits raw lines into document sections. Implementations are
// stateless and safe for concurrent use.
type Segmenter interface {
	Segment(lines []string) types.SegmentedDocument
}

// New returns the segmenter selected by cfg.Segmenter.
func New(cfg types.FormatterConfig) Segmenter {
	cfg = cfg.WithDefaults()
	if cfg.Segmenter == types.SegmenterFixed {
		return &Fixed{TitleSlots: cfg.TitlePageLines}
	}
	return &Dynamic{TitleSlots: cfg.TitlePageLines}
}

type section int

const (
	sectionTitle section = iota
	sectionAbstract
	sectionBody
	sectionReferences
)

// bodyOpeners end the abstract: the line goes to the body.
var bodyOpeners = map[string]bool{"introduction": true, "discussion": true, "conclusion": true}

// Dynamic walks the lines once with a section cursor. A line equal to
// "References" (any case) moves the cursor to the references for good; a
// line equal to "Abstract" opens the abstract. Both sentinel lines are
// consumed. The abstract runs up to and including its keywords line, or up
// to a line naming a level-1 section such as "Introduction"; everything
// after it is body.
//
// Title lines beyond TitleSlots go to the front of the body, so a document
// with no sentinels yields a title page followed by body lines only.
type Dynamic struct {
	TitleSlots int
}

// Segment implements Segmenter.
func (s *Dynamic) Segment(lines []string) types.SegmentedDocument {
	var (
		doc         types.SegmentedDocument
		title       []string
		titleOrigin []int
		body        []string
		bodyOrigin  []int
		cursor      = sectionTitle
	)
	for i, line := range lines {
		key := sentinelKey(line)
		switch {
		case key == "references":
			cursor = sectionReferences
			continue
		case key == "abstract" && cursor != sectionReferences:
			cursor = sectionAbstract
			continue
		}

		if cursor == sectionAbstract && bodyOpeners[key] {
			cursor = sectionBody
		}

		switch cursor {
		case sectionTitle:
			title = append(title, line)
			titleOrigin = append(titleOrigin, i)
		case sectionAbstract:
			doc.Abstract = append(doc.Abstract, line)
			if isKeywords(line) {
				cursor = sectionBody
			}
		case sectionBody:
			body = append(body, line)
			bodyOrigin = append(bodyOrigin, i)
		case sectionReferences:
			doc.References = append(doc.References, line)
		}
	}

	doc.TitlePage = titleSlots(title, s.TitleSlots)
	if len(title) > s.TitleSlots {
		body = append(append([]string{}, title[s.TitleSlots:]...), body...)
		bodyOrigin = append(append([]int{}, titleOrigin[s.TitleSlots:]...), bodyOrigin...)
	}
	doc.Body = body
	doc.BodyOrigin = bodyOrigin
	return doc
}

// bareReferences matches a references heading with an optional colon.
var bareReferences = regexp.MustCompile(`(?i)^\s*references?:?\s*$`)

// Fixed is the legacy positional segmenter. The first TitleSlots lines are
// the title page. The remainder is split at the first line starting with
// "references"; a bare heading line there is consumed, any other text is
// kept as the first reference. When the first remaining line is "Abstract",
// the next line is the abstract and a following "Keywords:" line belongs
// to it as well.
type Fixed struct {
	TitleSlots int
}

// Segment implements Segmenter.
func (s *Fixed) Segment(lines []string) types.SegmentedDocument {
	var doc types.SegmentedDocument
	n := min(s.TitleSlots, len(lines))
	doc.TitlePage = titleSlots(lines[:n], s.TitleSlots)

	rest := lines[n:]
	end := len(rest)
	for i, line := range rest {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "references") {
			end = i
			break
		}
	}
	if end < len(rest) {
		refs := rest[end:]
		if bareReferences.MatchString(refs[0]) {
			refs = refs[1:]
		}
		doc.References = append([]string(nil), refs...)
	}

	content := rest[:end]
	start := 0
	if len(content) > 0 && sentinelKey(content[0]) == "abstract" {
		start = 1
		if len(content) > 1 {
			doc.Abstract = append(doc.Abstract, content[1])
			start = 2
		}
		if len(content) > 2 && isKeywords(content[2]) {
			doc.Abstract = append(doc.Abstract, content[2])
			start = 3
		}
	}
	for i := start; i < len(content); i++ {
		doc.Body = append(doc.Body, content[i])
		doc.BodyOrigin = append(doc.BodyOrigin, n+i)
	}
	return doc
}

// titleSlots copies lines into exactly slots entries, padding with "".
func titleSlots(lines []string, slots int) []string {
	out := make([]string, slots)
	copy(out, lines)
	return out
}

func sentinelKey(line string) string {
	return strings.ToLower(strings.TrimSpace(line))
}

func isKeywords(line string) bool {
	return strings.HasPrefix(sentinelKey(line), "keywords:")
}

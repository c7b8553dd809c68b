// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reference parses free-text citations into their APA 7 fields and
// re-emits them as reference-list entries with italic spans.
//
// Parsing is total: a citation without a recognizable date anchor is
// returned verbatim (minus its URL) with Kind ReferenceUnparsed, so no
// reference is ever dropped. Telling a journal article from a book chapter
// or a book relies on punctuation patterns and will misread some inputs.
package reference

import (
	"regexp"
	"strings"

	"github.com/pdiddy/apa-formatter/internal/textcase"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

var (
	zeroWidth = strings.NewReplacer("\u200b", "", "\u200c", "", "\u202b", "", "\u202c", "")
	urlToken  = regexp.MustCompile(`https?://\S+`)

	// dateAnchor matches "(2020)." "(2020a)." "(2020, May 4)." and "(n.d.).".
	dateAnchor = regexp.MustCompile(`\((\d{4}[a-z]?(?:,\s*[A-Za-z]+(?:\s+\d{1,2})?)?|n\.d\.)\)\.`)

	// abbreviation matches in-title abbreviations whose periods must not
	// end the title segment.
	abbreviation = regexp.MustCompile(`(?i)\b(?:e\.g|i\.e|vs|cf)\.`)

	pageRange = regexp.MustCompile(`(^|[,\s(])(\d+)-(\d+)([.\s),;]|$)`)

	article = regexp.MustCompile(`^(.+?)([.?!])\s+([^,]+?),\s*(\d+)(?:\s*\(([^)]+)\))?(?:,\s*([A-Za-z]?\d+(?:[-–][A-Za-z]?\d+)?))?\.?$`)
	chapter = regexp.MustCompile(`^(.+?)([.?!])\s+In\s+(.+?)\s*\((Eds?\.)\),\s*(.+?)\s*\((pp?\.\s*[^)]+)\)\.?\s*(.*)$`)
	book    = regexp.MustCompile(`^(.+?)(?:\s*(` + bookSuffix + `))?(?:([.?!])(?:\s+(.*))?)?$`)
)

// bookSuffix matches edition, volume, and report descriptors that follow a
// book title but are not italicized.
const bookSuffix = `\((?:\d+(?:st|nd|rd|th)\s+ed\.|[Rr]ev(?:ised)?\.?\s+ed\.|[Ss]pecial\s+ed\.|Vol\.\s*\d+[^)]*|[Nn]o\.\s*\d+[^)]*|[Tt]ech(?:nical)?\.?\s*[Rr]ep(?:ort)?\.?[^)]*|[Rr]eport\s+[Nn]o\.[^)]*)\)`

// Parser parses citations. It is immutable after NewParser and safe for
// concurrent use.
type Parser struct {
	caser       *textcase.Caser
	orgKeywords map[string]bool
}

// NewParser builds a Parser from the small-word and organization-keyword
// tables in cfg. Empty tables take the defaults.
func NewParser(cfg types.FormatterConfig) *Parser {
	keywords := cfg.OrganizationKeywords
	if len(keywords) == 0 {
		keywords = DefaultOrganizationKeywords
	}
	org := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		org[strings.ToLower(strings.TrimSpace(k))] = true
	}
	return &Parser{caser: textcase.New(cfg.SmallWords), orgKeywords: org}
}

// Parse splits one citation into its fields and rebuilds it as an APA 7
// reference entry.
func (p *Parser) Parse(line string) types.ParsedReference {
	ref := types.ParsedReference{Raw: line, Kind: types.ReferenceUnparsed}
	s := strings.TrimSpace(zeroWidth.Replace(line))

	if loc := urlToken.FindStringIndex(s); loc != nil {
		ref.URL = strings.TrimRight(s[loc[0]:loc[1]], ".,;")
		s = joinNonEmpty(strings.TrimSpace(s[:loc[0]]), strings.TrimSpace(s[loc[1]:]))
	}

	loc := dateAnchor.FindStringSubmatchIndex(s)
	if loc == nil {
		ref.Text = s
		return ref
	}
	s = enDashPages(s)
	loc = dateAnchor.FindStringSubmatchIndex(s)

	authorsPart := collapse(s[:loc[0]])
	content := collapse(s[loc[1]:])
	ref.Date = "(" + s[loc[2]:loc[3]] + ")"
	if authorsPart != "" {
		ref.Authors = p.formatAuthors(authorsPart)
		if ref.Authors == "" {
			ref.Authors = authorsPart
		}
	}

	var b builder
	b.word(ref.Authors)
	b.word(ref.Date + ".")

	safe := protectAbbreviations(content)
	switch {
	case content == "":
		ref.Kind = types.ReferenceBook
	case article.MatchString(safe):
		p.buildArticle(&b, &ref, restorePeriods(article.FindStringSubmatch(safe)))
	case chapter.MatchString(safe):
		p.buildChapter(&b, &ref, restorePeriods(chapter.FindStringSubmatch(safe)))
	default:
		m := book.FindStringSubmatch(safe)
		if m == nil {
			m = []string{safe, safe, "", "", ""}
		}
		p.buildBook(&b, &ref, restorePeriods(m))
	}

	ref.Text = b.String()
	ref.Italics = b.spans
	return ref
}

// buildArticle emits "Title. Journal, volume(issue), pages." with the
// journal name and volume italic.
func (p *Parser) buildArticle(b *builder, ref *types.ParsedReference, m []string) {
	ref.Kind = types.ReferenceArticle
	ref.Title = textcase.SmartSentence(m[1])
	journal := p.caser.Title(collapse(m[3]))
	volume, issue, pages := m[4], strings.TrimSpace(m[5]), m[6]
	ref.Container = appendNonEmpty(nil, journal, volume, parenthesize(issue), pages)

	b.word(ref.Title + terminator(m[2]))
	b.sep()
	b.italic(journal)
	b.plain(", ")
	b.italic(volume)
	if issue != "" {
		b.plain("(" + issue + ")")
	}
	if pages != "" {
		b.plain(", " + pages)
	}
	b.plain(".")
}

// buildChapter emits "Title. In Editors (Eds.), Book Title (pp. X–Y).
// Publisher." with the book title italic.
func (p *Parser) buildChapter(b *builder, ref *types.ParsedReference, m []string) {
	ref.Kind = types.ReferenceChapter
	ref.Title = textcase.SmartSentence(m[1])
	editors := collapse(m[3])
	bookTitle := p.caser.Title(collapse(m[5]))
	pages := collapse(m[6])
	publisher := strings.TrimRight(collapse(m[7]), ".")
	ref.Container = appendNonEmpty(nil, editors, bookTitle, pages, publisher)

	b.word(ref.Title + terminator(m[2]))
	b.word("In " + editors + " (" + m[4] + "),")
	b.sep()
	b.italic(bookTitle)
	b.plain(" (" + pages + ").")
	if publisher != "" {
		b.word(publisher + ".")
	}
}

// buildBook emits "Title (edition). Publisher." with the title italic and
// the edition or report descriptor plain.
func (p *Parser) buildBook(b *builder, ref *types.ParsedReference, m []string) {
	ref.Kind = types.ReferenceBook
	ref.Title = textcase.SmartSentence(m[1])
	suffix := collapse(m[2])
	publisher := strings.TrimRight(collapse(m[4]), ".")
	ref.Container = appendNonEmpty(nil, suffix, publisher)

	b.sep()
	b.italic(ref.Title)
	if suffix != "" {
		b.plain(" " + suffix)
	}
	b.plain(terminator(m[3]))
	if publisher != "" {
		b.word(publisher + ".")
	}
}

// Emphasize returns ref's text and URL with each italic span wrapped in
// mark ("*" gives Markdown emphasis).
func Emphasize(ref types.ParsedReference, mark string) string {
	var sb strings.Builder
	pos := 0
	for _, sp := range ref.Italics {
		sb.WriteString(ref.Text[pos:sp.Start])
		sb.WriteString(mark + ref.Text[sp.Start:sp.End] + mark)
		pos = sp.End
	}
	sb.WriteString(ref.Text[pos:])
	if ref.URL != "" {
		sb.WriteString(" " + ref.URL)
	}
	return sb.String()
}

// protectAbbreviations replaces the periods of "e.g.", "i.e.", "vs." and
// "cf." with NUL so the content patterns do not split a title on them.
func protectAbbreviations(s string) string {
	return abbreviation.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ReplaceAll(m, ".", "\x00")
	})
}

// restorePeriods undoes protectAbbreviations in every submatch.
func restorePeriods(m []string) []string {
	for i := range m {
		m[i] = strings.ReplaceAll(m[i], "\x00", ".")
	}
	return m
}

// enDashPages turns hyphenated digit ranges into en-dash ranges. Matches
// consume their trailing delimiter, so adjacent ranges need a second pass.
func enDashPages(s string) string {
	for range 3 {
		next := pageRange.ReplaceAllString(s, "${1}${2}–${3}${4}")
		if next == s {
			break
		}
		s = next
	}
	return s
}

// builder accumulates the formatted reference and records italic spans as
// byte offsets into the final string.
type builder struct {
	sb    strings.Builder
	spans []types.Span
}

// sep writes a single space unless the output is empty.
func (b *builder) sep() {
	if b.sb.Len() > 0 {
		b.sb.WriteByte(' ')
	}
}

// word writes s preceded by a separator. Empty s writes nothing.
func (b *builder) word(s string) {
	if s == "" {
		return
	}
	b.sep()
	b.sb.WriteString(s)
}

func (b *builder) plain(s string) {
	b.sb.WriteString(s)
}

func (b *builder) italic(s string) {
	if s == "" {
		return
	}
	start := b.sb.Len()
	b.sb.WriteString(s)
	b.spans = append(b.spans, types.Span{Start: start, End: b.sb.Len()})
}

func (b *builder) String() string {
	return b.sb.String()
}

func terminator(t string) string {
	if t == "?" || t == "!" {
		return t
	}
	return "."
}

func parenthesize(s string) string {
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinNonEmpty(a, b string) string {
	return strings.TrimSpace(a + " " + b)
}

func appendNonEmpty(dst []string, vals ...string) []string {
	for _, v := range vals {
		if v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}

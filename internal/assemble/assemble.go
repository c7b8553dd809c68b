// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble turns a raw document into APA 7 pages: it segments the
// lines, classifies body lines, sorts and parses references, and drives a
// Renderer with the styling each unit requires.
package assemble

import (
	"strings"

	"github.com/pdiddy/apa-formatter/internal/classify"
	"github.com/pdiddy/apa-formatter/internal/reference"
	"github.com/pdiddy/apa-formatter/internal/render"
	"github.com/pdiddy/apa-formatter/internal/segment"
	"github.com/pdiddy/apa-formatter/internal/textcase"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

// Renderer receives the assembled document one unit at a time.
type Renderer interface {
	// NewPage starts a new page.
	NewPage()
	AddParagraph(render.Paragraph)
	AddTable(types.Table)
	AddImage(types.Image)
}

// Assembler holds the immutable collaborators of one formatting
// configuration. It keeps no per-document state and is safe for concurrent
// use.
type Assembler struct {
	segmenter  segment.Segmenter
	classifier *classify.Classifier
	parser     *reference.Parser
	caser      *textcase.Caser

	abstractMax int
	indent      float64
	lineSpacing float64
}

// New builds an Assembler. Zero-valued settings take the APA defaults.
func New(fcfg types.FormatterConfig, rcfg types.RenderConfig) *Assembler {
	fcfg = fcfg.WithDefaults()
	rcfg = rcfg.WithDefaults()
	return &Assembler{
		segmenter:   segment.New(fcfg),
		classifier:  classify.New(fcfg),
		parser:      reference.NewParser(fcfg),
		caser:       textcase.New(fcfg.SmallWords),
		abstractMax: fcfg.AbstractWordLimit,
		indent:      rcfg.IndentInches,
		lineSpacing: rcfg.LineSpacing,
	}
}

// Segment splits raw into sections with the configured segmenter.
func (a *Assembler) Segment(raw types.RawDocument) types.SegmentedDocument {
	return a.segmenter.Segment(raw.Lines)
}

// Assemble renders raw into r: title page, abstract, body, and references,
// each section on its own page. Sections with no content are skipped.
func (a *Assembler) Assemble(raw types.RawDocument, r Renderer) types.SegmentedDocument {
	doc := a.Segment(raw)
	w := &writer{r: r}

	if doc.HasTitlePage() {
		w.section()
		a.titlePage(w, doc)
	}
	if len(doc.Abstract) > 0 {
		w.section()
		a.abstract(w, doc.Abstract)
	}
	if len(doc.Body) > 0 || len(raw.Attachments) > 0 {
		w.section()
		a.body(w, doc, raw.Attachments)
	}
	if len(doc.References) > 0 {
		w.section()
		a.references(w, doc.References)
	}
	return doc
}

func (a *Assembler) titlePage(w *writer, doc types.SegmentedDocument) {
	for range 3 {
		w.paragraph(render.Paragraph{})
	}
	if title := doc.Title(); title != "" {
		w.paragraph(a.centered(render.Run{Text: a.caser.Title(title), Bold: true}))
	}
	w.paragraph(render.Paragraph{})
	for _, line := range doc.TitlePage[1:] {
		if line != "" {
			w.paragraph(a.centered(render.Run{Text: line}))
		}
	}
}

func (a *Assembler) abstract(w *writer, lines []string) {
	w.paragraph(a.centered(render.Run{Text: "Abstract", Bold: true}))

	var body []string
	keywords := ""
	for _, l := range lines {
		if strings.HasPrefix(strings.ToLower(l), "keywords:") {
			if keywords == "" {
				keywords = l
			}
			continue
		}
		body = append(body, l)
	}
	if text := truncateWords(strings.Join(body, " "), a.abstractMax); text != "" {
		w.paragraph(a.paragraph(render.AlignLeft, 0, 0, render.Run{Text: text}))
	}
	if keywords != "" {
		w.paragraph(a.keywords(keywords))
	}
}

func (a *Assembler) body(w *writer, doc types.SegmentedDocument, attachments []types.Attachment) {
	lines := a.classifier.ClassifyAll(doc.Body)
	title := doc.Title()

	// The first body line doubles as the title repeat when it matches the title.
	if title != "" {
		if len(lines) > 0 && strings.EqualFold(lines[0].Text, strings.TrimSpace(title)) {
			lines[0].Kind = types.KindHeading1
		} else {
			w.paragraph(a.centered(render.Run{Text: a.caser.Title(title), Bold: true}))
		}
	}

	after := make(map[int][]types.Attachment)
	var trailing []types.Attachment
	bodyLine := make(map[int]bool, len(doc.BodyOrigin))
	for _, origin := range doc.BodyOrigin {
		bodyLine[origin] = true
	}
	for _, att := range attachments {
		if bodyLine[att.After-1] {
			after[att.After-1] = append(after[att.After-1], att)
		} else {
			trailing = append(trailing, att)
		}
	}

	for i := range lines {
		a.bodyLine(w, lines[i])
		if i < len(doc.BodyOrigin) {
			w.attachments(after[doc.BodyOrigin[i]])
		}
	}
	w.attachments(trailing)
}

func (a *Assembler) bodyLine(w *writer, line types.ClassifiedLine) {
	if line.Kind.IsHeading() {
		w.paragraph(a.heading(line))
		return
	}
	switch line.Kind {
	case types.KindEmpty:
	case types.KindKeywords:
		w.paragraph(a.keywords(line.Text))
	case types.KindBlockQuote:
		w.paragraph(a.paragraph(render.AlignLeft, 0, a.indent, render.Run{Text: line.Text}))
	default:
		w.paragraph(a.paragraph(render.AlignLeft, a.indent, 0, render.Run{Text: textcase.CapitalizeFirst(line.Text)}))
	}
}

// heading renders a heading line bold and title-cased: level 1 centered,
// level 2 flush left, level 3 flush left in italics.
func (a *Assembler) heading(line types.ClassifiedLine) render.Paragraph {
	run := render.Run{Text: a.caser.Title(line.Text), Bold: true}
	switch line.Kind {
	case types.KindHeading1:
		return a.centered(run)
	case types.KindHeading3:
		run.Italic = true
	}
	return a.paragraph(render.AlignLeft, 0, 0, run)
}

func (a *Assembler) references(w *writer, lines []string) {
	w.paragraph(a.centered(render.Run{Text: "References", Bold: true}))
	for _, line := range reference.Sort(lines) {
		ref := a.parser.Parse(line)
		w.paragraph(a.paragraph(render.AlignLeft, -a.indent, a.indent, referenceRuns(ref)...))
	}
}

// referenceRuns splits the formatted text at its italic spans and appends
// the URL as a plain run.
func referenceRuns(ref types.ParsedReference) []render.Run {
	var runs []render.Run
	pos := 0
	for _, sp := range ref.Italics {
		if sp.Start > pos {
			runs = append(runs, render.Run{Text: ref.Text[pos:sp.Start]})
		}
		runs = append(runs, render.Run{Text: ref.Text[sp.Start:sp.End], Italic: true})
		pos = sp.End
	}
	if pos < len(ref.Text) {
		runs = append(runs, render.Run{Text: ref.Text[pos:]})
	}
	if ref.URL != "" {
		runs = append(runs, render.Run{Text: " " + ref.URL})
	}
	return runs
}

// keywords renders "Keywords: a, b" with an italic label and a first-line indent.
func (a *Assembler) keywords(line string) render.Paragraph {
	label, rest, _ := strings.Cut(strings.TrimSpace(line), ":")
	return a.paragraph(render.AlignLeft, a.indent, 0,
		render.Run{Text: label + ":", Italic: true},
		render.Run{Text: rest},
	)
}

func (a *Assembler) centered(runs ...render.Run) render.Paragraph {
	return a.paragraph(render.AlignCenter, 0, 0, runs...)
}

func (a *Assembler) paragraph(align render.Align, firstLine, left float64, runs ...render.Run) render.Paragraph {
	return render.Paragraph{
		Runs:            runs,
		Align:           align,
		FirstLineIndent: firstLine,
		LeftIndent:      left,
		LineSpacing:     a.lineSpacing,
	}
}

// truncateWords keeps the first limit words of s and marks the cut with
// "...". A limit of zero keeps everything.
func truncateWords(s string, limit int) string {
	words := strings.Fields(s)
	if limit > 0 && len(words) > limit {
		return strings.Join(words[:limit], " ") + "..."
	}
	return strings.Join(words, " ")
}

// writer starts a new page before every section but the first.
type writer struct {
	r       Renderer
	started bool
}

func (w *writer) section() {
	if w.started {
		w.r.NewPage()
	}
	w.started = true
}

func (w *writer) paragraph(p render.Paragraph) {
	w.r.AddParagraph(p)
}

func (w *writer) attachments(atts []types.Attachment) {
	for _, att := range atts {
		if att.Table != nil {
			w.r.AddTable(*att.Table)
		}
		if att.Image != nil {
			w.r.AddImage(*att.Image)
		}
	}
}

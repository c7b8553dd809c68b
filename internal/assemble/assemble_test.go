// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/apa-formatter/internal/render"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

// recorder implements Renderer and records every call as a short event.
type recorder struct {
	events     []string
	paragraphs []render.Paragraph
}

func (r *recorder) NewPage() { r.events = append(r.events, "page") }

func (r *recorder) AddParagraph(p render.Paragraph) {
	r.events = append(r.events, "p:"+p.Text())
	r.paragraphs = append(r.paragraphs, p)
}

func (r *recorder) AddTable(t types.Table) {
	r.events = append(r.events, fmt.Sprintf("table:%d", len(t.Rows)))
}

func (r *recorder) AddImage(img types.Image) {
	r.events = append(r.events, "image:"+img.Name)
}

// find returns the first recorded paragraph whose text is text.
func (r *recorder) find(t *testing.T, text string) render.Paragraph {
	t.Helper()
	for _, p := range r.paragraphs {
		if p.Text() == text {
			return p
		}
	}
	require.Failf(t, "paragraph not found", "%q", text)
	return render.Paragraph{}
}

func TestAssembleFullDocument(t *testing.T) {
	lines := []string{
		"the effects of sleep on memory",
		"Jane Doe",
		"Department of Psychology, Example University",
		"PSY 101: Intro Psychology",
		"Dr. Rivera",
		"May 4, 2024",
		"Word count: 3000",
		"Abstract",
		"This study examined sleep and memory.",
		"Keywords: sleep, memory",
		"Participants And Procedure",
		"we recruited 40 adults.",
		"References",
		"Zeller, A. (2019). Z study. Sleep Journal, 1, 1-2.",
		"Adams, B. (2018). A study. Sleep Journal, 2, 3-4.",
		"Miller, C. (2017). Sleeping well. Rest Press.",
	}
	a := New(types.FormatterConfig{}, types.RenderConfig{})
	rec := &recorder{}
	doc := a.Assemble(types.RawDocument{Lines: lines}, rec)

	assert.NotEmpty(t, doc.Abstract)
	assert.NotEmpty(t, doc.Body)
	assert.NotEmpty(t, doc.References)
	assert.Equal(t, lines[0], doc.Title())

	assert.Equal(t, []string{
		"p:", "p:", "p:",
		"p:The Effects of Sleep on Memory",
		"p:",
		"p:Jane Doe",
		"p:Department of Psychology, Example University",
		"p:PSY 101: Intro Psychology",
		"p:Dr. Rivera",
		"p:May 4, 2024",
		"p:Word count: 3000",
		"page",
		"p:Abstract",
		"p:This study examined sleep and memory.",
		"p:Keywords: sleep, memory",
		"page",
		"p:The Effects of Sleep on Memory",
		"p:Participants and Procedure",
		"p:We recruited 40 adults.",
		"page",
		"p:References",
		"p:Adams, B. (2018). A study. Sleep Journal, 2, 3–4.",
		"p:Miller, C. (2017). Sleeping well. Rest Press.",
		"p:Zeller, A. (2019). Z study. Sleep Journal, 1, 1–2.",
	}, rec.events)

	title := rec.find(t, "The Effects of Sleep on Memory")
	assert.Equal(t, render.AlignCenter, title.Align)
	assert.True(t, title.Runs[0].Bold)
	assert.Equal(t, 2.0, title.LineSpacing)

	kw := rec.find(t, "Keywords: sleep, memory")
	require.Len(t, kw.Runs, 2)
	assert.Equal(t, render.Run{Text: "Keywords:", Italic: true}, kw.Runs[0])
	assert.Equal(t, 0.5, kw.FirstLineIndent)

	abs := rec.find(t, "This study examined sleep and memory.")
	assert.Equal(t, 0.0, abs.FirstLineIndent)

	h2 := rec.find(t, "Participants and Procedure")
	assert.Equal(t, render.AlignLeft, h2.Align)
	assert.True(t, h2.Runs[0].Bold)
	assert.False(t, h2.Runs[0].Italic)

	body := rec.find(t, "We recruited 40 adults.")
	assert.Equal(t, 0.5, body.FirstLineIndent)

	ref := rec.find(t, "Adams, B. (2018). A study. Sleep Journal, 2, 3–4.")
	assert.Equal(t, -0.5, ref.FirstLineIndent)
	assert.Equal(t, 0.5, ref.LeftIndent)
	assert.Equal(t, []render.Run{
		{Text: "Adams, B. (2018). A study. "},
		{Text: "Sleep Journal", Italic: true},
		{Text: ", "},
		{Text: "2", Italic: true},
		{Text: ", 3–4."},
	}, ref.Runs)
}

func TestAssembleBodyStyles(t *testing.T) {
	quote := strings.TrimSpace(strings.Repeat("quoted words ", 21))
	lines := []string{
		"Short Title",
		"Abstract",
		"Summary.",
		"Keywords: a",
		"Method",
		"Sample Details:",
		quote,
		"Conclusion",
	}
	rec := &recorder{}
	New(types.FormatterConfig{}, types.RenderConfig{}).Assemble(types.RawDocument{Lines: lines}, rec)

	h2 := rec.find(t, "Method")
	assert.True(t, h2.Runs[0].Bold)
	assert.False(t, h2.Runs[0].Italic)
	assert.Equal(t, render.AlignLeft, h2.Align)
	assert.Equal(t, 0.0, h2.FirstLineIndent)

	h3 := rec.find(t, "Sample Details:")
	assert.True(t, h3.Runs[0].Bold)
	assert.True(t, h3.Runs[0].Italic)

	q := rec.find(t, quote)
	assert.Equal(t, 0.5, q.LeftIndent)
	assert.Equal(t, 0.0, q.FirstLineIndent)

	h1 := rec.find(t, "Conclusion")
	assert.Equal(t, render.AlignCenter, h1.Align)
	assert.True(t, h1.Runs[0].Bold)
	assert.False(t, h1.Runs[0].Italic)
}

func TestAssembleTitleRepeat(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		wantBody []string
	}{
		{
			name:     "first body line equals title",
			first:    "sleep and memory",
			wantBody: []string{"p:Sleep and Memory", "p:Body text."},
		},
		{
			name:     "first body line differs",
			first:    "Background",
			wantBody: []string{"p:Sleep and Memory", "p:Background", "p:Body text."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []string{"Sleep and Memory", "Abstract", "Text.", "Keywords: x", tt.first, "Body text."}
			rec := &recorder{}
			New(types.FormatterConfig{}, types.RenderConfig{}).Assemble(types.RawDocument{Lines: lines}, rec)

			// The body is the third page.
			var body []string
			pages := 0
			for _, e := range rec.events {
				if e == "page" {
					pages++
					continue
				}
				if pages == 2 {
					body = append(body, e)
				}
			}
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestAssembleAttachments(t *testing.T) {
	lines := []string{"My Title", "Abstract", "Summary.", "Keywords: a", "First para.", "Second para."}
	table := &types.Table{Rows: [][]string{{"a", "b"}, {"c", "d"}}}
	raw := types.RawDocument{
		Lines: lines,
		Attachments: []types.Attachment{
			{After: 1, Image: &types.Image{Name: "logo.png"}},
			{After: 5, Table: table},
			{After: 6, Image: &types.Image{Name: "fig1.png"}},
		},
	}
	rec := &recorder{}
	New(types.FormatterConfig{}, types.RenderConfig{}).Assemble(raw, rec)

	idx := 0
	for i, e := range rec.events {
		if e == "p:My Title" {
			idx = i
		}
	}
	assert.Equal(t, []string{
		"p:My Title",
		"p:First para.",
		"table:2",
		"p:Second para.",
		"image:fig1.png",
		"image:logo.png",
	}, rec.events[idx:])
}

func TestAssembleSkipsEmptySections(t *testing.T) {
	rec := &recorder{}
	lines := []string{"Title Only", "References", "Doe, J. (2020). Sleep. Press."}
	New(types.FormatterConfig{}, types.RenderConfig{}).Assemble(types.RawDocument{Lines: lines}, rec)

	pages := 0
	for _, e := range rec.events {
		if e == "page" {
			pages++
		}
	}
	assert.Equal(t, 1, pages)
	assert.NotContains(t, rec.events, "p:Abstract")
	assert.Equal(t, "p:Doe, J. (2020). Sleep. Press.", rec.events[len(rec.events)-1])
}

func TestAssembleAbstractLimit(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 300))
	lines := []string{"T", "Abstract", long}

	rec := &recorder{}
	New(types.DefaultConfig().Formatter, types.RenderConfig{}).Assemble(types.RawDocument{Lines: lines}, rec)
	last := rec.paragraphs[len(rec.paragraphs)-1].Text()
	assert.True(t, strings.HasSuffix(last, "..."))
	assert.Len(t, strings.Fields(last), 250)

	rec = &recorder{}
	New(types.FormatterConfig{AbstractWordLimit: 0}, types.RenderConfig{}).Assemble(types.RawDocument{Lines: lines}, rec)
	last = rec.paragraphs[len(rec.paragraphs)-1].Text()
	assert.Len(t, strings.Fields(last), 300)
}

func TestAssembleFixedSegmenter(t *testing.T) {
	lines := []string{"t", "a", "b", "c", "d", "e", "f", "Abstract", "Summary.", "Body text.", "References:", "Ref, A. (2020). Title. Press."}
	rec := &recorder{}
	doc := New(types.FormatterConfig{Segmenter: types.SegmenterFixed}, types.RenderConfig{}).Assemble(types.RawDocument{Lines: lines}, rec)
	assert.Equal(t, []string{"Summary."}, doc.Abstract)
	assert.Equal(t, []string{"Body text."}, doc.Body)
	assert.Equal(t, []string{"Ref, A. (2020). Title. Press."}, doc.References)
	assert.Contains(t, rec.events, "p:T")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

func TestClassify(t *testing.T) {
	c := New(types.FormatterConfig{})
	long := strings.TrimSpace(strings.Repeat("Word ", 41))
	exactly40 := strings.TrimSpace(strings.Repeat("Word ", 40))

	tests := []struct {
		name     string
		line     string
		wantKind types.LineKind
		wantText string
	}{
		{name: "empty", line: "", wantKind: types.KindEmpty},
		{name: "whitespace only", line: " \t ", wantKind: types.KindEmpty},
		{name: "over forty words is a block quote", line: long, wantKind: types.KindBlockQuote, wantText: long},
		{name: "forty title words is body", line: exactly40, wantKind: types.KindBodyParagraph, wantText: exactly40},
		{name: "keywords prefix", line: "Keywords: sleep, memory", wantKind: types.KindKeywords, wantText: "Keywords: sleep, memory"},
		{name: "keywords any case", line: "KEYWORDS: x", wantKind: types.KindKeywords, wantText: "KEYWORDS: x"},
		{name: "vocabulary heading", line: "  introduction ", wantKind: types.KindHeading1, wantText: "introduction"},
		{name: "vocabulary is exact", line: "Introduction to Sleep", wantKind: types.KindBodyParagraph, wantText: "Introduction to Sleep"},
		{name: "title cased heading", line: "Participants And Procedure", wantKind: types.KindHeading2, wantText: "Participants And Procedure"},
		{name: "single word heading", line: "Method", wantKind: types.KindHeading2, wantText: "Method"},
		{name: "colon makes level three", line: "Sample Characteristics:", wantKind: types.KindHeading3, wantText: "Sample Characteristics:"},
		{name: "trailing period is body", line: "Results Were Clear.", wantKind: types.KindBodyParagraph, wantText: "Results Were Clear."},
		{name: "lowercase word is body", line: "Results of the Study", wantKind: types.KindBodyParagraph, wantText: "Results of the Study"},
		{name: "ten words is too long for heading", line: "One Two Three Four Five Six Seven Eight Nine Ten", wantKind: types.KindBodyParagraph, wantText: "One Two Three Four Five Six Seven Eight Nine Ten"},
		{name: "nine words can be heading", line: "One Two Three Four Five Six Seven Eight Nine", wantKind: types.KindHeading2, wantText: "One Two Three Four Five Six Seven Eight Nine"},
		{name: "sentence", line: "This study examined sleep.", wantKind: types.KindBodyParagraph, wantText: "This study examined sleep."},
		{name: "inline markup stripped", line: "<b>Method</b>", wantKind: types.KindHeading2, wantText: "Method"},
		{name: "entities survive stripping", line: "<i>Salt &amp; Pepper</i>", wantKind: types.KindHeading2, wantText: "Salt & Pepper"},
		{name: "attributes stripped with tag", line: `<span style="font-weight:bold">Method</span>`, wantKind: types.KindHeading2, wantText: "Method"},
		{name: "inline tag inside prose", line: "Effect <b>size</b> was small.", wantKind: types.KindBodyParagraph, wantText: "Effect size was small."},
		{name: "relational operators kept", line: "When n<k and k>m the bound holds.", wantKind: types.KindBodyParagraph, wantText: "When n<k and k>m the bound holds."},
		{name: "comparison that looks like a tag", line: "Scores with a<b were excluded, and scores with b>c were kept.", wantKind: types.KindBodyParagraph, wantText: "Scores with a<b were excluded, and scores with b>c were kept."},
		{name: "arrow and inequality", line: "Use p < .05 -> reject.", wantKind: types.KindBodyParagraph, wantText: "Use p < .05 -> reject."},
		{name: "numbers only", line: "2020", wantKind: types.KindBodyParagraph, wantText: "2020"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.line)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantText, got.Text)
		})
	}
}

func TestClassifyThresholds(t *testing.T) {
	c := New(types.FormatterConfig{BlockQuoteWords: 3, HeadingMaxWords: 3})
	assert.Equal(t, types.KindBlockQuote, c.Classify("one two three four").Kind)
	assert.Equal(t, types.KindHeading2, c.Classify("Two Words").Kind)
	assert.Equal(t, types.KindBodyParagraph, c.Classify("Three Word Line").Kind)
}

func TestClassifyTotal(t *testing.T) {
	c := New(types.FormatterConfig{})
	valid := map[types.LineKind]bool{
		types.KindHeading1: true, types.KindHeading2: true, types.KindHeading3: true,
		types.KindKeywords: true, types.KindBlockQuote: true, types.KindBodyParagraph: true,
	}
	inputs := []string{
		"x", "X", ".", ":", "Keywords:", "References", "<", "<<>>", "a < b", "\u200b",
		"Über Alles", "1. Introduction", "(A)", "– —", "Ünïcödé:", "<script>alert(1)</script>Text",
	}
	for _, in := range inputs {
		got := c.Classify(in)
		if got.Text == "" {
			assert.Equal(t, types.KindEmpty, got.Kind, "input %q", in)
			continue
		}
		assert.True(t, valid[got.Kind], "input %q got %q", in, got.Kind)
	}
}

func TestClassifyAll(t *testing.T) {
	c := New(types.FormatterConfig{})
	got := c.ClassifyAll([]string{"Conclusion", "We found effects."})
	assert.Equal(t, []types.ClassifiedLine{
		{Kind: types.KindHeading1, Text: "Conclusion"},
		{Kind: types.KindBodyParagraph, Text: "We found effects."},
	}, got)
}

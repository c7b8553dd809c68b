// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

func titleLines(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Title line %d", i+1)
	}
	return out
}

func TestDynamicSegment(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		wantTitle  []string
		wantAbs    []string
		wantBody   []string
		wantOrigin []int
		wantRefs   []string
	}{
		{
			name:       "all four sections",
			lines:      append(titleLines(7), "Abstract", "We studied sleep.", "Keywords: sleep, memory", "Method", "Participants slept.", "References", "B ref (2020).", "A ref (2019)."),
			wantTitle:  titleLines(7),
			wantAbs:    []string{"We studied sleep.", "Keywords: sleep, memory"},
			wantBody:   []string{"Method", "Participants slept."},
			wantOrigin: []int{10, 11},
			wantRefs:   []string{"B ref (2020).", "A ref (2019)."},
		},
		{
			name:      "short title block is padded",
			lines:     []string{"My Title", "Jane Doe", "abstract", "Text.", "  REFERENCES  ", "Ref (2020)."},
			wantTitle: []string{"My Title", "Jane Doe", "", "", "", "", ""},
			wantAbs:   []string{"Text."},
			wantRefs:  []string{"Ref (2020)."},
		},
		{
			name:       "no sentinels puts overflow in body",
			lines:      titleLines(9),
			wantTitle:  titleLines(7),
			wantBody:   []string{"Title line 8", "Title line 9"},
			wantOrigin: []int{7, 8},
		},
		{
			name:       "level-1 heading ends abstract without keywords",
			lines:      []string{"T", "Abstract", "Summary text.", "Introduction", "Body text."},
			wantTitle:  []string{"T", "", "", "", "", "", ""},
			wantAbs:    []string{"Summary text."},
			wantBody:   []string{"Introduction", "Body text."},
			wantOrigin: []int{3, 4},
		},
		{
			name:      "references never left",
			lines:     []string{"T", "References", "Ref one (2020).", "Abstract", "Ref two (2021)."},
			wantTitle: []string{"T", "", "", "", "", "", ""},
			wantRefs:  []string{"Ref one (2020).", "Abstract", "Ref two (2021)."},
		},
		{
			name:      "empty input",
			wantTitle: []string{"", "", "", "", "", "", ""},
		},
	}
	s := New(types.FormatterConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Segment(tt.lines)
			assert.Equal(t, tt.wantTitle, got.TitlePage)
			assert.Equal(t, tt.wantAbs, got.Abstract)
			assert.Equal(t, tt.wantBody, got.Body)
			assert.Equal(t, tt.wantOrigin, got.BodyOrigin)
			assert.Equal(t, tt.wantRefs, got.References)
		})
	}
}

func TestFixedSegment(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		wantAbs    []string
		wantBody   []string
		wantOrigin []int
		wantRefs   []string
	}{
		{
			name:       "abstract with keywords",
			lines:      append(titleLines(7), "Abstract", "Summary.", "Keywords: a, b", "Body one.", "References", "Ref (2020)."),
			wantAbs:    []string{"Summary.", "Keywords: a, b"},
			wantBody:   []string{"Body one."},
			wantOrigin: []int{10},
			wantRefs:   []string{"Ref (2020)."},
		},
		{
			name:       "no abstract",
			lines:      append(titleLines(7), "Body one.", "Body two."),
			wantBody:   []string{"Body one.", "Body two."},
			wantOrigin: []int{7, 8},
		},
		{
			name:     "references line with text is kept",
			lines:    append(titleLines(7), "References and notes (2020).", "Ref (2021)."),
			wantRefs: []string{"References and notes (2020).", "Ref (2021)."},
		},
		{
			name:     "bare heading with colon consumed",
			lines:    append(titleLines(7), "References:", "Ref (2021)."),
			wantRefs: []string{"Ref (2021)."},
		},
	}
	s := New(types.FormatterConfig{Segmenter: types.SegmenterFixed})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Segment(tt.lines)
			assert.Equal(t, titleLines(7), got.TitlePage)
			assert.Equal(t, tt.wantAbs, got.Abstract)
			assert.Equal(t, tt.wantBody, got.Body)
			assert.Equal(t, tt.wantOrigin, got.BodyOrigin)
			assert.Equal(t, tt.wantRefs, got.References)
		})
	}
}

func TestFixedShortInput(t *testing.T) {
	got := (&Fixed{TitleSlots: 7}).Segment([]string{"Only"})
	assert.Equal(t, []string{"Only", "", "", "", "", "", ""}, got.TitlePage)
	assert.Empty(t, got.Body)
}

// TestDynamicPreservesLines checks that every non-sentinel line lands in
// exactly one section, in source order.
func TestDynamicPreservesLines(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := []string{"Abstract", "References", "Introduction", "Keywords: k", "Heading", "text"}
	s := &Dynamic{TitleSlots: 7}

	for iter := 0; iter < 500; iter++ {
		n := rng.Intn(25)
		lines := make([]string, n)
		for i := range lines {
			w := pool[rng.Intn(len(pool))]
			if w == "text" || w == "Heading" {
				w = fmt.Sprintf("%s %d", w, i)
			}
			lines[i] = w
		}

		var want []string
		inRefs := false
		for _, l := range lines {
			key := strings.ToLower(l)
			if key == "references" {
				inRefs = true
				continue
			}
			if key == "abstract" && !inRefs {
				continue
			}
			want = append(want, l)
		}

		doc := s.Segment(lines)
		require.Len(t, doc.TitlePage, 7)
		require.Len(t, doc.BodyOrigin, len(doc.Body))

		var title []string
		for _, l := range doc.TitlePage {
			if l != "" {
				title = append(title, l)
			}
		}
		var got []string
		for _, bucket := range [][]string{title, doc.Abstract, doc.Body, doc.References} {
			assert.True(t, isSubsequence(bucket, want), "lines %q bucket %q", lines, bucket)
			got = append(got, bucket...)
		}
		sort.Strings(got)
		sorted := append([]string(nil), want...)
		sort.Strings(sorted)
		assert.Equal(t, sorted, got, "lines %q", lines)

		for i, origin := range doc.BodyOrigin {
			assert.Equal(t, lines[origin], doc.Body[i])
		}
	}
}

func isSubsequence(sub, seq []string) bool {
	j := 0
	for _, s := range seq {
		if j < len(sub) && sub[j] == s {
			j++
		}
	}
	return j == len(sub)
}

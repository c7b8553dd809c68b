// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the apa-formatter pipeline:
// the raw input document, its segmented sections, classified body lines, and
// parsed references.
package types

// RawDocument is the ordered sequence of non-empty trimmed lines extracted
// from the input, plus any tables and images found in an uploaded file.
type RawDocument struct {
	// Lines holds the non-empty trimmed input lines in source order.
	Lines []string `json:"lines" yaml:"lines"`

	// Attachments holds tables and images in source order.
	Attachments []Attachment `json:"attachments,omitempty" yaml:"attachments,omitempty"`
}

// IsEmpty reports whether the document has no usable content.
func (d RawDocument) IsEmpty() bool {
	return len(d.Lines) == 0 && len(d.Attachments) == 0
}

// Attachment is a table or image anchored between two input lines.
type Attachment struct {
	// After is the number of input lines that precede the attachment.
	After int `json:"after" yaml:"after"`

	// Table is set for table attachments.
	Table *Table `json:"table,omitempty" yaml:"table,omitempty"`

	// Image is set for image attachments.
	Image *Image `json:"image,omitempty" yaml:"image,omitempty"`
}

// Table is a grid of cell texts, row-major.
type Table struct {
	Rows [][]string `json:"rows" yaml:"rows"`
}

// Columns returns the width of the widest row.
func (t Table) Columns() int {
	n := 0
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// Image is an embedded picture held in memory.
type Image struct {
	// Name is the file name inside the source archive (e.g. "image1.png").
	Name string `json:"name" yaml:"name"`

	// Data is the encoded image.
	Data []byte `json:"-" yaml:"-"`
}

// SegmentedDocument holds the four document sections produced by the segmenter.
type SegmentedDocument struct {
	// TitlePage holds exactly TitlePageLines slots; unfilled slots are "".
	TitlePage []string `json:"title_page" yaml:"title_page"`

	// Abstract holds the abstract lines, possibly including a keywords line.
	Abstract []string `json:"abstract" yaml:"abstract"`

	// Body holds the body lines in source order.
	Body []string `json:"body" yaml:"body"`

	// BodyOrigin holds, for each body line, its index in RawDocument.Lines.
	BodyOrigin []int `json:"-" yaml:"-"`

	// References holds the raw citation lines in source order.
	References []string `json:"references" yaml:"references"`
}

// Title returns the first title-page line, or "" when there is none.
func (d SegmentedDocument) Title() string {
	if len(d.TitlePage) == 0 {
		return ""
	}
	return d.TitlePage[0]
}

// HasTitlePage reports whether any title-page slot is filled.
func (d SegmentedDocument) HasTitlePage() bool {
	for _, l := range d.TitlePage {
		if l != "" {
			return true
		}
	}
	return false
}

// LineKind categorizes a body line.
type LineKind string

const (
	KindEmpty         LineKind = "empty"
	KindHeading1      LineKind = "heading_level_1"
	KindHeading2      LineKind = "heading_level_2"
	KindHeading3      LineKind = "heading_level_3"
	KindKeywords      LineKind = "keywords"
	KindBlockQuote    LineKind = "block_quote"
	KindBodyParagraph LineKind = "body_paragraph"
)

// IsHeading reports whether k is one of the heading levels.
func (k LineKind) IsHeading() bool {
	return k == KindHeading1 || k == KindHeading2 || k == KindHeading3
}

// ClassifiedLine is a body line with its assigned kind.
type ClassifiedLine struct {
	Kind LineKind `json:"kind" yaml:"kind"`
	Text string   `json:"text" yaml:"text"`
}

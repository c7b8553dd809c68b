// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Span is a half-open [Start, End) byte range within a formatted string.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// ReferenceKind records which pattern a citation matched.
type ReferenceKind string

const (
	ReferenceArticle  ReferenceKind = "article"
	ReferenceChapter  ReferenceKind = "chapter"
	ReferenceBook     ReferenceKind = "book"
	ReferenceUnparsed ReferenceKind = "unparsed"
)

// ParsedReference is one citation split into its structural fields and
// re-emitted as an APA reference-list entry.
type ParsedReference struct {
	// Raw is the input line as given.
	Raw string `json:"raw" yaml:"raw"`

	// Kind is the matched pattern; ReferenceUnparsed means Text is the
	// URL-stripped input returned verbatim.
	Kind ReferenceKind `json:"kind" yaml:"kind"`

	// Authors is the formatted author list (e.g. "Smith, J., & Doe, A.").
	Authors string `json:"authors" yaml:"authors"`

	// Date is the parenthesized date, e.g. "(2020)" or "(n.d.)".
	Date string `json:"date" yaml:"date"`

	// Title is the sentence-cased title segment without its terminator.
	Title string `json:"title" yaml:"title"`

	// Container holds the container segments in output order
	// (journal, volume, issue, pages; or editors, book title, pages, publisher).
	Container []string `json:"container,omitempty" yaml:"container,omitempty"`

	// Text is the formatted reference without the URL.
	Text string `json:"text" yaml:"text"`

	// Italics are the spans of Text rendered in italic type, sorted and
	// non-overlapping.
	Italics []Span `json:"italics,omitempty" yaml:"italics,omitempty"`

	// URL is the trailing DOI or URL, if any.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render paints assembled paragraphs, tables, and images into an
// output format: an HTML markup fragment or a DOCX word-processor file.
//
// Renderers accumulate content in memory and produce the finished artifact
// in one Serialize call. A renderer serves a single request and is not safe
// for concurrent use.
package render

import (
	"fmt"
	"strings"
)

// Align is a paragraph alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Run is a span of text sharing one character style.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Paragraph is a styled block of runs. Indents are in inches; a negative
// FirstLineIndent together with a positive LeftIndent is a hanging indent.
type Paragraph struct {
	Runs            []Run
	Align           Align
	FirstLineIndent float64
	LeftIndent      float64

	// LineSpacing is a multiple of single spacing; zero means the renderer default.
	LineSpacing float64
}

// Text returns the concatenated run text.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Document is a serialized artifact ready to be returned to the caller.
type Document struct {
	Data        []byte
	ContentType string
	Filename    string
}

const (
	// DOCXContentType is the MIME type of Office Open XML documents.
	DOCXContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// DOCXFilename is the suggested download name.
	DOCXFilename = "formatted_apa_document.docx"

	// HTMLContentType is the MIME type of the markup fragment.
	HTMLContentType = "text/html; charset=utf-8"
)

// RenderError reports a failure to serialize the finished document.
type RenderError struct {
	Format string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format runs one formatting request end to end: obtain lines from
// pasted text or an uploaded file, optionally clean them up, assemble the
// APA document, and serialize it as HTML or DOCX.
package format

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/apa-formatter/internal/assemble"
	"github.com/pdiddy/apa-formatter/internal/cleanup"
	"github.com/pdiddy/apa-formatter/internal/convert"
	"github.com/pdiddy/apa-formatter/internal/render"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

// Output selects the serialized form of the result.
type Output string

const (
	OutputHTML Output = "html"
	OutputDOCX Output = "docx"
)

// ParseOutput accepts "html" and "docx" in any case; "" and "text" mean
// html.
func ParseOutput(s string) (Output, error) {
	switch Output(strings.ToLower(strings.TrimSpace(s))) {
	case "", "text", OutputHTML:
		return OutputHTML, nil
	case OutputDOCX:
		return OutputDOCX, nil
	default:
		return "", fmt.Errorf("unsupported output format %q: use html or docx", s)
	}
}

// Ext returns the file extension for o, including the dot.
func (o Output) Ext() string { return "." + string(o) }

// Input is one request. A file (Filename with Data) takes precedence over
// Text.
type Input struct {
	Text     string
	Filename string
	Data     []byte
}

// Result is the outcome of a successful request.
type Result struct {
	Output   Output
	Document *render.Document
	Sections types.SegmentedDocument
}

// documentRenderer is a Renderer that can serialize what it received.
type documentRenderer interface {
	assemble.Renderer
	Serialize() (*render.Document, error)
}

// Formatter is safe for concurrent use; each call builds its own renderer.
type Formatter struct {
	registry  *convert.Registry
	cleanup   *cleanup.Service
	assembler *assemble.Assembler
	render    types.RenderConfig
}

// New builds a Formatter. A nil registry means the built-in extractors and
// a nil cleanup service disables cleanup.
func New(cfg types.Config, registry *convert.Registry, svc *cleanup.Service) *Formatter {
	if registry == nil {
		registry = convert.NewRegistry()
	}
	return &Formatter{
		registry:  registry,
		cleanup:   svc,
		assembler: assemble.New(cfg.Formatter, cfg.Render),
		render:    cfg.Render.WithDefaults(),
	}
}

// Extensions lists the upload file types the Formatter accepts.
func (f *Formatter) Extensions() []string { return f.registry.Extensions() }

// Format runs in through the pipeline. Missing or unreadable input yields a
// *convert.InputError; a serialization failure yields a *render.RenderError.
func (f *Formatter) Format(ctx context.Context, in Input, out Output) (*Result, error) {
	raw, err := f.Read(ctx, in)
	if err != nil {
		return nil, err
	}

	var r documentRenderer
	switch out {
	case OutputHTML, "":
		out = OutputHTML
		r = render.NewHTML(f.render)
	case OutputDOCX:
		r = render.NewDOCX(f.render)
	default:
		return nil, fmt.Errorf("unsupported output format %q", out)
	}

	sections := f.assembler.Assemble(raw, r)
	doc, err := r.Serialize()
	if err != nil {
		return nil, err
	}
	return &Result{Output: out, Document: doc, Sections: sections}, nil
}

// Read turns in into a RawDocument, applying text cleanup when the
// document carries no attachments whose anchors cleanup could shift.
func (f *Formatter) Read(ctx context.Context, in Input) (types.RawDocument, error) {
	var (
		raw types.RawDocument
		err error
	)
	if in.Filename != "" && len(in.Data) > 0 {
		raw, err = f.registry.Extract(ctx, in.Filename, in.Data)
	} else {
		raw, err = convert.FromText(in.Text)
	}
	if err != nil {
		return types.RawDocument{}, err
	}

	if !f.cleanup.Enabled() || len(raw.Attachments) > 0 {
		return raw, nil
	}
	cleaned := convert.Lines(f.cleanup.Clean(ctx, strings.Join(raw.Lines, "\n")))
	if len(cleaned) == 0 {
		return raw, nil
	}
	raw.Lines = cleaned
	return raw, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns pasted text or an uploaded file into a RawDocument:
// the ordered non-empty trimmed lines of the input plus any tables and
// images found in it. Each file type is handled by a pluggable Extractor.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

// ErrNoInput is matched by every InputError: the request carried no usable
// content.
var ErrNoInput = errors.New("no usable input")

// InputError reports that no content could be obtained from the input.
type InputError struct {
	// Source is the uploaded file name, or "" for pasted text.
	Source string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	msg := e.Reason
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNoInput) hold for every InputError.
func (e *InputError) Is(target error) bool { return target == ErrNoInput }

// Extractor reads one file format into a RawDocument.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (types.RawDocument, error)
}

// Registry maps file extensions to extractors.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry returns a registry with the built-in extractors: .docx, .pdf,
// .html/.htm, .txt, and .md.
func NewRegistry() *Registry {
	r := &Registry{byExt: map[string]Extractor{}}
	r.Register(".docx", DOCXExtractor{})
	r.Register(".pdf", PDFExtractor{})
	r.Register(".html", HTMLExtractor{})
	r.Register(".htm", HTMLExtractor{})
	r.Register(".txt", TextExtractor{})
	r.Register(".md", TextExtractor{Markdown: true})
	return r
}

// Register binds ext (with or without the leading dot) to e, replacing any
// previous binding.
func (r *Registry) Register(ext string, e Extractor) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.byExt[ext] = e
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for e := range r.byExt {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return exts
}

// Extract reads the uploaded file name with content data. Unsupported
// types, extraction failures, and files without text all yield an
// *InputError.
func (r *Registry) Extract(ctx context.Context, name string, data []byte) (types.RawDocument, error) {
	ext := strings.ToLower(filepath.Ext(name))
	e, ok := r.byExt[ext]
	if !ok {
		return types.RawDocument{}, &InputError{Source: name, Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}
	doc, err := e.Extract(ctx, data)
	if err != nil {
		var ie *InputError
		if errors.As(err, &ie) {
			return types.RawDocument{}, err
		}
		return types.RawDocument{}, &InputError{Source: name, Reason: fmt.Sprintf("could not process %s file", ext), Err: err}
	}
	if doc.IsEmpty() {
		return types.RawDocument{}, &InputError{Source: name, Reason: "no text found"}
	}
	return doc, nil
}

// FromText builds a RawDocument from pasted text.
func FromText(text string) (types.RawDocument, error) {
	lines := Lines(text)
	if len(lines) == 0 {
		return types.RawDocument{}, &InputError{Reason: "no input provided"}
	}
	return types.RawDocument{Lines: lines}, nil
}

// Lines splits text into its non-empty trimmed lines.
func Lines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

var markdownHeading = regexp.MustCompile(`^#{1,6}\s+`)

// TextExtractor reads UTF-8 plain text. With Markdown set, leading heading
// markers ("## ") are removed.
type TextExtractor struct {
	Markdown bool
}

// Extract implements Extractor.
func (t TextExtractor) Extract(_ context.Context, data []byte) (types.RawDocument, error) {
	lines := Lines(string(data))
	if t.Markdown {
		for i, l := range lines {
			lines[i] = markdownHeading.ReplaceAllString(l, "")
		}
	}
	return types.RawDocument{Lines: lines}, nil
}

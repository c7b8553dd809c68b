// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

var (
	hiddenStyle = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden`)
	dataImage   = regexp.MustCompile(`^data:image/([a-z]+);base64,(.+)$`)
)

// HTMLExtractor reads an HTML page: one line per block element, tables as
// Table attachments, and inline base64 images as Image attachments.
// Scripts, styles, and hidden elements are skipped.
type HTMLExtractor struct{}

// Extract implements Extractor.
func (HTMLExtractor) Extract(_ context.Context, data []byte) (types.RawDocument, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return types.RawDocument{}, fmt.Errorf("parse html: %w", err)
	}
	w := &htmlWalker{}
	w.walk(root)
	w.flush()
	return w.doc, nil
}

type htmlWalker struct {
	doc     types.RawDocument
	pending strings.Builder
	images  int
}

func (w *htmlWalker) flush() {
	if line := strings.Join(strings.Fields(w.pending.String()), " "); line != "" {
		w.doc.Lines = append(w.doc.Lines, line)
	}
	w.pending.Reset()
}

func (w *htmlWalker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.pending.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipNode(n) {
			return
		}
		switch n.DataAtom {
		case atom.Table:
			w.flush()
			if t := htmlTable(n); len(t.Rows) > 0 {
				w.doc.Attachments = append(w.doc.Attachments, types.Attachment{After: len(w.doc.Lines), Table: &t})
			}
			return
		case atom.Img:
			w.flush()
			if img := w.dataImage(n); img != nil {
				w.doc.Attachments = append(w.doc.Attachments, types.Attachment{After: len(w.doc.Lines), Image: img})
			}
			return
		case atom.Br:
			w.flush()
			return
		}
	}

	block := n.Type == html.ElementNode && isBlock(n.DataAtom)
	if block {
		w.flush()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if block {
		w.flush()
	}
}

func (w *htmlWalker) dataImage(n *html.Node) *types.Image {
	m := dataImage.FindStringSubmatch(attr(n, "src"))
	if m == nil {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil
	}
	w.images++
	return &types.Image{Name: fmt.Sprintf("image%d.%s", w.images, m[1]), Data: data}
}

func skipNode(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Head, atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return hiddenStyle.MatchString(attr(n, "style"))
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Li, atom.Blockquote, atom.Pre, atom.Dt, atom.Dd, atom.Section,
		atom.Article, atom.Header, atom.Footer, atom.Figcaption, atom.Caption, atom.Hr:
		return true
	}
	return false
}

// htmlTable collects the rows of t, ignoring nested tables.
func htmlTable(t *html.Node) types.Table {
	var out types.Table
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.DataAtom == atom.Table {
				continue
			}
			if c.DataAtom != atom.Tr {
				rows(c)
				continue
			}
			var row []string
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.DataAtom == atom.Td || cell.DataAtom == atom.Th {
					row = append(row, nodeText(cell))
				}
			}
			if len(row) > 0 {
				out.Rows = append(out.Rows, row)
			}
		}
	}
	rows(t)
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && skipNode(n) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

// HTML renders the document as a sequence of styled <div> fragments, one
// per paragraph, mirroring the DOCX paragraph attributes with inline CSS.
type HTML struct {
	cfg   types.RenderConfig
	nodes []*html.Node
}

// NewHTML returns an empty markup renderer.
func NewHTML(cfg types.RenderConfig) *HTML {
	return &HTML{cfg: cfg.WithDefaults()}
}

// NewPage emits a page-break marker.
func (h *HTML) NewPage() {
	h.nodes = append(h.nodes, element(atom.Div, "page-break-before:always"))
}

// AddParagraph emits one <div> with a <strong>, <em>, or plain text child
// per run.
func (h *HTML) AddParagraph(p Paragraph) {
	div := element(atom.Div, h.paragraphStyle(p))
	for _, r := range p.Runs {
		div.AppendChild(runNode(r))
	}
	h.nodes = append(h.nodes, div)
}

// AddTable emits a bordered <table>.
func (h *HTML) AddTable(t types.Table) {
	table := element(atom.Table, "border-collapse:collapse;margin:1em 0")
	for _, row := range t.Rows {
		tr := element(atom.Tr, "")
		for _, cell := range row {
			td := element(atom.Td, "border:1px solid black;padding:0.2em 0.5em")
			td.AppendChild(&html.Node{Type: html.TextNode, Data: cell})
			tr.AppendChild(td)
		}
		table.AppendChild(tr)
	}
	h.nodes = append(h.nodes, table)
}

// AddImage emits an <img> with the picture inlined as a data URI.
func (h *HTML) AddImage(img types.Image) {
	src := "data:" + http.DetectContentType(img.Data) + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	node := element(atom.Img, fmt.Sprintf("display:block;width:%gin", h.cfg.ImageWidthInches))
	node.Attr = append(node.Attr,
		html.Attribute{Key: "src", Val: src},
		html.Attribute{Key: "alt", Val: img.Name},
	)
	h.nodes = append(h.nodes, node)
}

// Markup renders the accumulated fragments, one per line.
func (h *HTML) Markup() (string, error) {
	var buf bytes.Buffer
	for i, n := range h.nodes {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if err := html.Render(&buf, n); err != nil {
			return "", &RenderError{Format: "html", Err: err}
		}
	}
	return buf.String(), nil
}

// Serialize returns the markup as a text/html document.
func (h *HTML) Serialize() (*Document, error) {
	markup, err := h.Markup()
	if err != nil {
		return nil, err
	}
	return &Document{Data: []byte(markup), ContentType: HTMLContentType}, nil
}

func (h *HTML) paragraphStyle(p Paragraph) string {
	spacing := p.LineSpacing
	if spacing == 0 {
		spacing = h.cfg.LineSpacing
	}
	styles := []string{
		fmt.Sprintf("font-family:'%s'", h.cfg.Font),
		fmt.Sprintf("font-size:%dpt", h.cfg.FontSize),
		fmt.Sprintf("line-height:%g", spacing),
		"margin:0",
	}
	if p.Align != "" && p.Align != AlignLeft {
		styles = append(styles, "text-align:"+string(p.Align))
	}
	if p.LeftIndent != 0 {
		styles = append(styles, fmt.Sprintf("margin-left:%gin", p.LeftIndent))
	}
	if p.FirstLineIndent != 0 {
		styles = append(styles, fmt.Sprintf("text-indent:%gin", p.FirstLineIndent))
	}
	if len(p.Runs) == 0 {
		styles = append(styles, "min-height:1em")
	}
	return strings.Join(styles, ";")
}

func runNode(r Run) *html.Node {
	text := &html.Node{Type: html.TextNode, Data: r.Text}
	node := text
	if r.Italic {
		em := element(atom.Em, "")
		em.AppendChild(node)
		node = em
	}
	if r.Bold {
		strong := element(atom.Strong, "")
		strong.AppendChild(node)
		node = strong
	}
	return node
}

func element(a atom.Atom, style string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if style != "" {
		n.Attr = []html.Attribute{{Key: "style", Val: style}}
	}
	return n
}

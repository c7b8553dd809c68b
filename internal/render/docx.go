// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/gif"  // register decoder for image.DecodeConfig
	_ "image/jpeg" // register decoder for image.DecodeConfig
	_ "image/png"  // register decoder for image.DecodeConfig
	"math"
	"path"
	"sort"
	"strings"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

const (
	twipsPerInch = 1440
	emuPerInch   = 914400

	// fallbackAspect is the height/width ratio used when an image's
	// dimensions cannot be decoded.
	fallbackAspect = 0.75

	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relHeader = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relDoc    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
)

// DOCX writes an Office Open XML word-processing document: US letter with
// 1in margins, the configured font as the Normal style, and a right-aligned
// page number in the header.
type DOCX struct {
	cfg   types.RenderConfig
	body  strings.Builder
	media []media
}

// part is one file inside the .docx archive.
type part struct {
	name string
	data []byte
}

type media struct {
	relID string
	file  string
	data  []byte
}

// NewDOCX returns an empty DOCX renderer.
func NewDOCX(cfg types.RenderConfig) *DOCX {
	return &DOCX{cfg: cfg.WithDefaults()}
}

// NewPage inserts a page break.
func (d *DOCX) NewPage() {
	d.body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

// AddParagraph writes one w:p with its spacing, indent, and alignment.
func (d *DOCX) AddParagraph(p Paragraph) {
	spacing := p.LineSpacing
	if spacing == 0 {
		spacing = d.cfg.LineSpacing
	}
	b := &d.body
	b.WriteString(`<w:p><w:pPr>`)
	fmt.Fprintf(b, `<w:spacing w:before="0" w:after="0" w:line="%d" w:lineRule="auto"/>`, int(math.Round(spacing*240)))
	if p.LeftIndent != 0 || p.FirstLineIndent != 0 {
		b.WriteString(`<w:ind`)
		if p.LeftIndent != 0 {
			fmt.Fprintf(b, ` w:left="%d"`, twips(p.LeftIndent))
		}
		switch {
		case p.FirstLineIndent > 0:
			fmt.Fprintf(b, ` w:firstLine="%d"`, twips(p.FirstLineIndent))
		case p.FirstLineIndent < 0:
			fmt.Fprintf(b, ` w:hanging="%d"`, twips(-p.FirstLineIndent))
		}
		b.WriteString(`/>`)
	}
	if p.Align != "" {
		jc := string(p.Align)
		if p.Align == AlignLeft {
			jc = "left"
		}
		fmt.Fprintf(b, `<w:jc w:val="%s"/>`, jc)
	}
	b.WriteString(`</w:pPr>`)
	for _, r := range p.Runs {
		writeRun(b, r)
	}
	b.WriteString(`</w:p>`)
}

// AddTable writes a bordered grid table followed by an empty paragraph.
func (d *DOCX) AddTable(t types.Table) {
	cols := t.Columns()
	if cols == 0 {
		return
	}
	width := twips(6.5) / cols
	b := &d.body
	b.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="0" w:type="auto"/><w:tblBorders>`)
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(b, `<w:%s w:val="single" w:sz="4" w:space="0" w:color="000000"/>`, side)
	}
	b.WriteString(`</w:tblBorders></w:tblPr><w:tblGrid>`)
	for range cols {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, width)
	}
	b.WriteString(`</w:tblGrid>`)
	for _, row := range t.Rows {
		b.WriteString(`<w:tr>`)
		for c := range cols {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			fmt.Fprintf(b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr><w:p>`, width)
			writeRun(b, Run{Text: cell})
			b.WriteString(`</w:p></w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl><w:p/>`)
}

// AddImage embeds the picture from memory at the configured width,
// preserving its aspect ratio.
func (d *DOCX) AddImage(img types.Image) {
	n := len(d.media) + 1
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(img.Name)), ".")
	switch ext {
	case "":
		ext = "png"
	case "jpg":
		ext = "jpeg"
	}
	m := media{
		relID: fmt.Sprintf("rIdImg%d", n),
		file:  fmt.Sprintf("image%d.%s", n, ext),
		data:  img.Data,
	}
	d.media = append(d.media, m)

	aspect := fallbackAspect
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err == nil && cfg.Width > 0 {
		aspect = float64(cfg.Height) / float64(cfg.Width)
	}
	cx := int64(d.cfg.ImageWidthInches * emuPerInch)
	cy := int64(float64(cx) * aspect)

	fmt.Fprintf(&d.body, `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0"><wp:extent cx="%[1]d" cy="%[2]d"/>`+
		`<wp:docPr id="%[3]d" name="Picture %[3]d"/>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%[3]d" name="%[4]s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[5]s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		cx, cy, n, escape(m.file), m.relID)
}

// Serialize packages the document parts into a .docx archive.
func (d *DOCX) Serialize() (*Document, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []part{
		{"[Content_Types].xml", []byte(d.contentTypes())},
		{"_rels/.rels", []byte(xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="` + relDoc + `" Target="word/document.xml"/></Relationships>`)},
		{"word/document.xml", []byte(d.document())},
		{"word/_rels/document.xml.rels", []byte(d.documentRels())},
		{"word/styles.xml", []byte(d.styles())},
	}
	if d.cfg.PageNumbers {
		parts = append(parts, part{"word/header1.xml", []byte(pageNumberHeader)})
	}
	for _, m := range d.media {
		parts = append(parts, part{"word/media/" + m.file, m.data})
	}

	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, &RenderError{Format: "docx", Err: fmt.Errorf("creating %s: %w", p.name, err)}
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, &RenderError{Format: "docx", Err: fmt.Errorf("writing %s: %w", p.name, err)}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &RenderError{Format: "docx", Err: fmt.Errorf("closing archive: %w", err)}
	}
	return &Document{Data: buf.Bytes(), ContentType: DOCXContentType, Filename: DOCXFilename}, nil
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func (d *DOCX) document() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<w:document xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s"><w:body>`, nsW, nsR, nsWP, nsA, nsPic)
	b.WriteString(d.body.String())
	b.WriteString(`<w:sectPr>`)
	if d.cfg.PageNumbers {
		b.WriteString(`<w:headerReference w:type="default" r:id="rIdHeader"/>`)
	}
	b.WriteString(`<w:pgSz w:w="12240" w:h="15840"/>`)
	b.WriteString(`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>`)
	b.WriteString(`</w:sectPr></w:body></w:document>`)
	return b.String()
}

func (d *DOCX) documentRels() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	fmt.Fprintf(&b, `<Relationship Id="rIdStyles" Type="%s" Target="styles.xml"/>`, relStyles)
	if d.cfg.PageNumbers {
		fmt.Fprintf(&b, `<Relationship Id="rIdHeader" Type="%s" Target="header1.xml"/>`, relHeader)
	}
	for _, m := range d.media {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="media/%s"/>`, m.relID, relImage, escape(m.file))
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func (d *DOCX) contentTypes() string {
	exts := map[string]bool{}
	for _, m := range d.media {
		exts[strings.TrimPrefix(path.Ext(m.file), ".")] = true
	}
	sorted := make([]string, 0, len(exts))
	for e := range exts {
		sorted = append(sorted, e)
	}
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	for _, e := range sorted {
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="image/%s"/>`, escape(e), escape(e))
	}
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	b.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	if d.cfg.PageNumbers {
		b.WriteString(`<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func (d *DOCX) styles() string {
	font := escape(d.cfg.Font)
	size := d.cfg.FontSize * 2
	return xmlHeader + fmt.Sprintf(`<w:styles xmlns:w="%s">`+
		`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%[2]s" w:hAnsi="%[2]s" w:cs="%[2]s" w:eastAsia="%[2]s"/><w:sz w:val="%[3]d"/><w:szCs w:val="%[3]d"/></w:rPr></w:rPrDefault>`+
		`<w:pPrDefault><w:pPr><w:spacing w:after="0" w:line="480" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>`+
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/>`+
		`<w:rPr><w:rFonts w:ascii="%[2]s" w:hAnsi="%[2]s" w:cs="%[2]s"/><w:sz w:val="%[3]d"/></w:rPr></w:style>`+
		`<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:tblPr><w:tblBorders>`+
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="000000"/><w:left w:val="single" w:sz="4" w:space="0" w:color="000000"/>`+
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="000000"/><w:right w:val="single" w:sz="4" w:space="0" w:color="000000"/>`+
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="000000"/><w:insideV w:val="single" w:sz="4" w:space="0" w:color="000000"/>`+
		`</w:tblBorders></w:tblPr></w:style></w:styles>`, nsW, font, size)
}

const pageNumberHeader = xmlHeader + `<w:hdr xmlns:w="` + nsW + `"><w:p><w:pPr><w:jc w:val="right"/></w:pPr>` +
	`<w:r><w:fldChar w:fldCharType="begin"/></w:r>` +
	`<w:r><w:instrText xml:space="preserve"> PAGE </w:instrText></w:r>` +
	`<w:r><w:fldChar w:fldCharType="separate"/></w:r>` +
	`<w:r><w:t>1</w:t></w:r>` +
	`<w:r><w:fldChar w:fldCharType="end"/></w:r></w:p></w:hdr>`

func writeRun(b *strings.Builder, r Run) {
	b.WriteString(`<w:r>`)
	if r.Bold || r.Italic {
		b.WriteString(`<w:rPr>`)
		if r.Bold {
			b.WriteString(`<w:b/>`)
		}
		if r.Italic {
			b.WriteString(`<w:i/>`)
		}
		b.WriteString(`</w:rPr>`)
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(escape(r.Text))
	b.WriteString(`</w:t></w:r>`)
}

func twips(inches float64) int {
	return int(math.Round(inches * twipsPerInch))
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

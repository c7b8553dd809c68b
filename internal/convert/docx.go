// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

const (
	docxDocument = "word/document.xml"
	docxRels     = "word/_rels/document.xml.rels"
)

// DOCXExtractor reads a Word document: paragraph text in reading order,
// tables as Table attachments, and embedded pictures as Image attachments.
type DOCXExtractor struct{}

// Extract implements Extractor.
func (DOCXExtractor) Extract(_ context.Context, data []byte) (types.RawDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return types.RawDocument{}, fmt.Errorf("open zip: %w", err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	docFile := files[docxDocument]
	if docFile == nil {
		return types.RawDocument{}, fmt.Errorf("%s not found in archive", docxDocument)
	}
	rels, err := readRelationships(files[docxRels])
	if err != nil {
		return types.RawDocument{}, err
	}

	rc, err := docFile.Open()
	if err != nil {
		return types.RawDocument{}, fmt.Errorf("open %s: %w", docxDocument, err)
	}
	defer rc.Close()

	w := &docxWalker{rels: rels, files: files}
	if err := w.walk(xml.NewDecoder(rc)); err != nil {
		return types.RawDocument{}, err
	}
	return w.doc, nil
}

// docxWalker accumulates a RawDocument from the document.xml token stream.
type docxWalker struct {
	rels  map[string]string
	files map[string]*zip.File
	doc   types.RawDocument

	para   strings.Builder
	inText bool
	blips  []string

	tblDepth int
	table    [][]string
	cell     strings.Builder
}

func (w *docxWalker) walk(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse %s: %w", docxDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t)
		case xml.CharData:
			if !w.inText {
				continue
			}
			if w.tblDepth > 0 {
				w.cell.Write(t)
			} else {
				w.para.Write(t)
			}
		case xml.EndElement:
			if err := w.end(t); err != nil {
				return err
			}
		}
	}
}

func (w *docxWalker) start(t xml.StartElement) {
	switch t.Name.Local {
	case "tbl":
		if w.tblDepth == 0 {
			w.table = nil
		}
		w.tblDepth++
	case "tr":
		if w.tblDepth == 1 {
			w.table = append(w.table, nil)
		}
	case "tc":
		if w.tblDepth == 1 {
			w.cell.Reset()
		}
	case "p":
		if w.tblDepth == 0 {
			w.para.Reset()
			w.blips = w.blips[:0]
		}
	case "t":
		w.inText = true
	case "tab":
		w.write("\t")
	case "br", "cr":
		w.write("\n")
	case "blip":
		if w.tblDepth > 0 {
			return
		}
		for _, a := range t.Attr {
			if a.Name.Local == "embed" {
				w.blips = append(w.blips, a.Value)
			}
		}
	}
}

func (w *docxWalker) end(t xml.EndElement) error {
	switch t.Name.Local {
	case "t":
		w.inText = false
	case "p":
		if w.tblDepth > 0 {
			w.cell.WriteString(" ")
			return nil
		}
		w.doc.Lines = append(w.doc.Lines, Lines(w.para.String())...)
		for _, id := range w.blips {
			img, err := w.image(id)
			if err != nil {
				return err
			}
			if img != nil {
				w.doc.Attachments = append(w.doc.Attachments, types.Attachment{After: len(w.doc.Lines), Image: img})
			}
		}
	case "tc":
		if w.tblDepth == 1 && len(w.table) > 0 {
			row := len(w.table) - 1
			w.table[row] = append(w.table[row], strings.Join(strings.Fields(w.cell.String()), " "))
		}
	case "tbl":
		w.tblDepth--
		if w.tblDepth == 0 && len(w.table) > 0 {
			w.doc.Attachments = append(w.doc.Attachments, types.Attachment{
				After: len(w.doc.Lines),
				Table: &types.Table{Rows: w.table},
			})
		}
	}
	return nil
}

func (w *docxWalker) write(s string) {
	if w.tblDepth > 0 {
		w.cell.WriteString(s)
		return
	}
	w.para.WriteString(s)
}

// image loads the media part behind relationship id. Dangling and external
// relationships yield nil.
func (w *docxWalker) image(id string) (*types.Image, error) {
	name, ok := w.rels[id]
	if !ok {
		return nil, nil
	}
	f := w.files[name]
	if f == nil {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &types.Image{Name: path.Base(name), Data: data}, nil
}

type relationships struct {
	Items []struct {
		ID         string `xml:"Id,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// readRelationships maps relationship ids to archive paths. A missing rels
// part is not an error.
func readRelationships(f *zip.File) (map[string]string, error) {
	out := map[string]string{}
	if f == nil {
		return out, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", docxRels, err)
	}
	defer rc.Close()

	var rels relationships
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		return nil, fmt.Errorf("parse %s: %w", docxRels, err)
	}
	for _, r := range rels.Items {
		if strings.EqualFold(r.TargetMode, "External") {
			continue
		}
		target := r.Target
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Join("word", target)
		}
		out[r.ID] = path.Clean(target)
	}
	return out, nil
}

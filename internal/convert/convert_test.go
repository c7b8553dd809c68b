// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/apa-formatter/internal/render"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "blank lines dropped", in: "a\n\n  \nb", want: []string{"a", "b"}},
		{name: "crlf and padding", in: "  Title \r\nBody\r\n", want: []string{"Title", "Body"}},
		{name: "byte order mark", in: "\ufeffTitle", want: []string{"Title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lines(tt.in))
		})
	}
}

func TestFromText(t *testing.T) {
	doc, err := FromText("Title\n\nAbstract\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Abstract"}, doc.Lines)

	_, err = FromText(" \n\t\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoInput))
	assert.Equal(t, "no input provided", err.Error())
}

func TestRegistryExtract(t *testing.T) {
	r := NewRegistry()

	doc, err := r.Extract(context.Background(), "paper.TXT", []byte("Title\nBody"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Body"}, doc.Lines)

	doc, err = r.Extract(context.Background(), "notes.md", []byte("# Title\n## Method\nBody"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "Method", "Body"}, doc.Lines)

	_, err = r.Extract(context.Background(), "paper.xyz", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoInput))
	assert.Contains(t, err.Error(), `unsupported file type ".xyz"`)

	_, err = r.Extract(context.Background(), "empty.txt", []byte("\n\n"))
	require.Error(t, err)
	assert.Equal(t, "empty.txt: no text found", err.Error())

	_, err = r.Extract(context.Background(), "broken.docx", []byte("not a zip"))
	require.Error(t, err)
	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "could not process .docx file", ie.Reason)
	assert.NotNil(t, ie.Unwrap())

	_, err = r.Extract(context.Background(), "broken.pdf", []byte("%PDF-garbage"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoInput))
}

func TestRegistryExtensions(t *testing.T) {
	r := NewRegistry()
	r.Register("RTF", TextExtractor{})
	assert.Equal(t, []string{".docx", ".htm", ".html", ".md", ".pdf", ".rtf", ".txt"}, r.Extensions())
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 2))))
	return buf.Bytes()
}

func TestDOCXRoundTrip(t *testing.T) {
	pic := pngBytes(t)
	w := render.NewDOCX(types.DefaultConfig().Render)
	w.AddParagraph(render.Paragraph{Runs: []render.Run{{Text: "Sleep and Memory", Bold: true}}})
	w.NewPage()
	w.AddParagraph(render.Paragraph{Runs: []render.Run{{Text: "Rest helps "}, {Text: "recall", Italic: true}, {Text: " & focus."}}})
	w.AddTable(types.Table{Rows: [][]string{{"Group", "Score"}, {"Rested", "9"}}})
	w.AddImage(types.Image{Name: "chart.png", Data: pic})
	w.AddParagraph(render.Paragraph{Runs: []render.Run{{Text: "After the figure."}}})
	out, err := w.Serialize()
	require.NoError(t, err)

	doc, err := DOCXExtractor{}.Extract(context.Background(), out.Data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sleep and Memory", "Rest helps recall & focus.", "After the figure."}, doc.Lines)
	require.Len(t, doc.Attachments, 2)

	tbl := doc.Attachments[0]
	assert.Equal(t, 2, tbl.After)
	require.NotNil(t, tbl.Table)
	assert.Equal(t, [][]string{{"Group", "Score"}, {"Rested", "9"}}, tbl.Table.Rows)

	img := doc.Attachments[1]
	assert.Equal(t, 2, img.After)
	require.NotNil(t, img.Image)
	assert.Equal(t, "image1.png", img.Image.Name)
	assert.Equal(t, pic, img.Image.Data)
}

func TestDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = DOCXExtractor{}.Extract(context.Background(), buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml not found")
}

func TestHTMLExtract(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>ignored</title><style>p{}</style></head><body>
<h1>Sleep and   Memory</h1>
<p>First <b>bold</b> paragraph.</p>
<div style="display:none">hidden</div>
<script>var x = 1;</script>
<table><tr><th>Group</th><th>Score</th></tr><tr><td>Rested</td><td><i>9</i></td></tr></table>
<p>Line one<br>Line two</p>
<img src="data:image/png;base64,iVBORw0KGgo=">
<ul><li>Item</li></ul>
</body></html>`

	doc, err := HTMLExtractor{}.Extract(context.Background(), []byte(page))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sleep and Memory", "First bold paragraph.", "Line one", "Line two", "Item"}, doc.Lines)
	require.Len(t, doc.Attachments, 2)
	assert.Equal(t, 2, doc.Attachments[0].After)
	assert.Equal(t, [][]string{{"Group", "Score"}, {"Rested", "9"}}, doc.Attachments[0].Table.Rows)
	assert.Equal(t, 4, doc.Attachments[1].After)
	assert.Equal(t, "image1.png", doc.Attachments[1].Image.Name)
}

// fakeRuntime implements container.Runtime for testing.
type fakeRuntime struct {
	imageErr error
	output   string
	runErr   error
}

func (f *fakeRuntime) Name() string                              { return "fake" }
func (f *fakeRuntime) Available(context.Context) bool            { return true }
func (f *fakeRuntime) ImageExists(context.Context, string) error { return f.imageErr }

func (f *fakeRuntime) Run(_ context.Context, _ string, stdin io.Reader, stdout io.Writer) error {
	if f.runErr != nil {
		return f.runErr
	}
	_, _ = io.ReadAll(stdin)
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestMarkitdownExtractor(t *testing.T) {
	cfg := types.DefaultConfig().Convert
	cfg.Image = "markitdown:latest"

	tests := []struct {
		name      string
		rt        *fakeRuntime
		wantLines []string
		wantErr   string
	}{
		{
			name:      "markdown output becomes lines",
			rt:        &fakeRuntime{output: "# Sleep and Memory\n\nBody text.\n"},
			wantLines: []string{"Sleep and Memory", "Body text."},
		},
		{
			name:    "empty output",
			rt:      &fakeRuntime{},
			wantErr: "produced empty output",
		},
		{
			name:    "container failure",
			rt:      &fakeRuntime{runErr: errors.New("exit 1")},
			wantErr: "exit 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMarkitdownExtractor(context.Background(), tt.rt, cfg)
			require.NoError(t, err)
			doc, err := m.Extract(context.Background(), []byte("{\\rtf1 body}"))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLines, doc.Lines)
		})
	}
}

func TestRegisterContainer(t *testing.T) {
	cfg := types.DefaultConfig().Convert
	cfg.Image = "markitdown:latest"

	r := NewRegistry()
	err := r.registerContainer(context.Background(), &fakeRuntime{imageErr: errors.New("missing")}, cfg)
	require.Error(t, err)
	assert.NotContains(t, r.Extensions(), ".rtf")

	require.NoError(t, r.registerContainer(context.Background(), &fakeRuntime{output: "Title"}, cfg))
	assert.Contains(t, r.Extensions(), ".rtf")
	assert.Contains(t, r.Extensions(), ".odt")

	doc, err := r.Extract(context.Background(), "paper.rtf", []byte("{\\rtf1}"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Title"}, doc.Lines)

	_, err = NewMarkitdownExtractor(context.Background(), &fakeRuntime{}, types.ConvertConfig{})
	require.Error(t, err)
}

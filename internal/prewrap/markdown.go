package prewrap

import (
	"bytes"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// ErrMarkdownRender indicates the markdown renderer failed.
var ErrMarkdownRender = errors.New("markdown rendering failed")

// Markdown renders markdown files to standalone HTML documents with GFM
// extensions and inline-styled syntax highlighting, so the result needs no
// external stylesheet when the browser prints it.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a Markdown wrapper.
func NewMarkdown() *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles, no stylesheet needed
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			ghtml.WithXHTML(),
		),
	)
	return &Markdown{md: md}
}

// Wrap renders inputPath to a complete HTML document at outputPath. An
// empty encoding means detect.
func (m *Markdown) Wrap(inputPath, outputPath, encoding string) error {
	content, err := readDecoded(inputPath, encoding)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := m.md.Convert([]byte(content), &buf); err != nil {
		return fmt.Errorf("%w: %v", ErrMarkdownRender, err)
	}
	return writeWrapped(outputPath, buf.String())
}

package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docfind/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser renders Markdown to HTML using goldmark. Raw HTML in the
// source is escaped (goldmark's default), fenced code becomes <pre><code>.
type MarkdownParser struct{}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := markdown.Parser().Parse(text.NewReader(src))

	title := strings.TrimSuffix(strings.TrimSuffix(filename, ".md"), ".markdown")
	// A leading h1 names the document.
	if h, ok := doc.FirstChild().(*ast.Heading); ok && h.Level == 1 {
		if t := strings.TrimSpace(headingText(h, src)); t != "" {
			title = t
		}
	}

	var body bytes.Buffer
	if err := markdown.Renderer().Render(&body, src, doc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return newDocument(title, body.String())
}

// headingText gets the inline text of a heading.
func headingText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
		} else {
			buf.WriteString(headingText(c, src))
		}
	}
	return buf.String()
}

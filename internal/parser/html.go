package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docfind/internal/doctree"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Uploaded markup is sanitized before it is
// served back, so scripts, event handlers and foreign data-* attributes
// never reach the content tree.
type HTMLParser struct{}

var sanitizer = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id", "class", "hidden", "aria-hidden").Globally()
	return p
}()

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	raw, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSuffix(strings.TrimSuffix(filename, ".html"), ".htm")
	// Extract title from <title> tag if present.
	if t := doctree.FindTitle(raw); t != "" {
		title = t
	}

	// Sanitize the body only; head content is not searchable prose.
	src := raw
	if body := doctree.FindBody(raw); body != nil {
		src = body
	}
	var inner bytes.Buffer
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&inner, c); err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
	}

	return newDocument(title, SanitizeHTML(inner.String()))
}

// SanitizeHTML applies the upload policy to a markup fragment. Fragments
// appended to a live document go through it as well.
func SanitizeHTML(fragment string) string {
	return sanitizer.Sanitize(fragment)
}

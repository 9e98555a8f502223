package highlight

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// HighlightClass is set on every wrapper for styling.
	HighlightClass = "search-highlight"
	// ActiveClass marks the wrapper currently focused by navigation.
	ActiveClass = "active"

	// ownerAttr tags wrappers created here. Uploaded documents are
	// sanitized, so it cannot be spoofed by content.
	ownerAttr = "data-docfind-highlight"
)

// ErrDetached is returned when a text run no longer has a parent.
var ErrDetached = errors.New("text run is detached")

// IsHighlight reports whether n is a wrapper created by this package.
func IsHighlight(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.DataAtom != atom.Mark {
		return false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == ownerAttr {
			return true
		}
	}
	return false
}

func newHighlight(text string) *html.Node {
	m := &html.Node{
		Type:     html.ElementNode,
		Data:     "mark",
		DataAtom: atom.Mark,
		Attr: []html.Attribute{
			{Key: "class", Val: HighlightClass},
			{Key: ownerAttr, Val: "true"},
		},
	}
	m.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return m
}

// Render replaces run in its parent with plain text for the gaps and one
// wrapper per span, and returns the wrappers in order. With no spans the
// run is left untouched.
//
// Spans must be ordered, non-overlapping and still agree with run's value;
// otherwise nothing is modified and an error is returned.
func Render(run *html.Node, spans []MatchSpan) ([]*html.Node, error) {
	if len(spans) == 0 {
		return nil, nil
	}
	if run == nil || run.Type != html.TextNode {
		return nil, errors.New("render target is not a text node")
	}
	parent := run.Parent
	if parent == nil {
		return nil, ErrDetached
	}

	text := run.Data
	frags := make([]*html.Node, 0, 2*len(spans)+1)
	marks := make([]*html.Node, 0, len(spans))
	cursor := 0
	for _, s := range spans {
		if s.Start < cursor || s.End <= s.Start || s.End > len(text) {
			return nil, fmt.Errorf("span [%d,%d) invalid for %d-byte run at offset %d", s.Start, s.End, len(text), cursor)
		}
		if s.Text != "" && text[s.Start:s.End] != s.Text {
			return nil, fmt.Errorf("span [%d,%d) no longer matches run content", s.Start, s.End)
		}
		if s.Start > cursor {
			frags = append(frags, &html.Node{Type: html.TextNode, Data: text[cursor:s.Start]})
		}
		m := newHighlight(text[s.Start:s.End])
		frags = append(frags, m)
		marks = append(marks, m)
		cursor = s.End
	}
	if cursor < len(text) {
		frags = append(frags, &html.Node{Type: html.TextNode, Data: text[cursor:]})
	}

	for _, f := range frags {
		parent.InsertBefore(f, run)
	}
	parent.RemoveChild(run)
	return marks, nil
}

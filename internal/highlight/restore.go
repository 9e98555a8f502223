package highlight

import (
	"github.com/dgallion1/docfind/internal/doctree"
	"golang.org/x/net/html"
)

// Restore unwraps each wrapper back into plain text and merges it with the
// text on either side, undoing Render. Wrappers without a parent are
// skipped. It returns how many wrappers were unwrapped.
func Restore(marks []*html.Node) int {
	restored := 0
	for _, m := range marks {
		if m == nil || m.Parent == nil {
			continue
		}
		parent := m.Parent
		t := &html.Node{Type: html.TextNode, Data: doctree.TextContent(m)}
		parent.InsertBefore(t, m)
		parent.RemoveChild(m)
		doctree.MergeText(t)
		if t.Data == "" && t.Parent != nil {
			t.Parent.RemoveChild(t)
		}
		restored++
	}
	return restored
}

// Sweep restores every wrapper found under root, whether or not a registry
// still tracks it. It recovers trees left behind by an interrupted search.
func Sweep(root *html.Node) int {
	var stray []*html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if IsHighlight(n) {
			stray = append(stray, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	if root != nil {
		find(root)
	}
	return Restore(stray)
}

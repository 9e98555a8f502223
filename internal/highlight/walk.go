package highlight

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// TextRuns yields the searchable text nodes beneath root in document order.
//
// Elements matched by exclude are pruned together with their subtrees, and
// so are highlight wrappers created by this package regardless of exclude.
// Text nodes that are empty after trimming are skipped. The sequence reads
// the tree lazily; callers that rewrite runs must collect it first.
func TextRuns(root *html.Node, exclude Exclusion) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		if root == nil {
			return
		}
		walk(root, exclude, yield)
	}
}

func walk(n *html.Node, exclude Exclusion, yield func(*html.Node) bool) bool {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return true
		}
		return yield(n)
	case html.ElementNode:
		if IsHighlight(n) || (exclude != nil && exclude(n)) {
			return true
		}
	case html.DocumentNode:
	default:
		// Comments, doctypes and raw nodes carry no visible text.
		return true
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !walk(c, exclude, yield) {
			return false
		}
		c = next
	}
	return true
}

// excludedAncestry reports whether any ancestor of n prunes it from a walk.
func excludedAncestry(n *html.Node, exclude Exclusion) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if IsHighlight(p) || (exclude != nil && exclude(p)) {
			return true
		}
	}
	return false
}

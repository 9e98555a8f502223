package highlight

import (
	"strings"

	"github.com/dgallion1/docfind/internal/doctree"
	"golang.org/x/net/html"
)

// Exclusion reports whether the subtree rooted at an element must not be
// searched. It is evaluated top-down during the walk, so returning true
// prunes everything beneath n.
type Exclusion func(n *html.Node) bool

// DefaultExcludedTags are elements whose text is never visible prose.
var DefaultExcludedTags = []string{
	"head", "code", "pre", "script", "style", "noscript", "template", "textarea",
}

// DefaultExclusion skips DefaultExcludedTags and hidden subtrees.
func DefaultExclusion() Exclusion {
	return AnyOf(ExcludeTags(DefaultExcludedTags...), ExcludeHidden)
}

// ExcludeTags matches elements by tag name, case-insensitively.
func ExcludeTags(tags ...string) Exclusion {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			set[t] = true
		}
	}
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && set[strings.ToLower(n.Data)]
	}
}

// ExcludeHidden matches elements carrying the hidden attribute or
// aria-hidden="true".
func ExcludeHidden(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if _, ok := doctree.Attr(n, "hidden"); ok {
		return true
	}
	v, ok := doctree.Attr(n, "aria-hidden")
	return ok && strings.EqualFold(strings.TrimSpace(v), "true")
}

// AnyOf combines predicates; nil entries are ignored.
func AnyOf(preds ...Exclusion) Exclusion {
	return func(n *html.Node) bool {
		for _, p := range preds {
			if p != nil && p(n) {
				return true
			}
		}
		return false
	}
}

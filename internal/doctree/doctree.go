// Package doctree holds helpers for the HTML content tree that documents are
// parsed into and searched over.
package doctree

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed upload ready to be searched.
type Document struct {
	Title string     // Document title (from metadata or filename)
	Root  *html.Node // html.DocumentNode owning the whole tree
}

// TextContent concatenates every text node beneath n, untrimmed.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

// FindTitle returns the trimmed text of the first <title> element.
func FindTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(TextContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := FindTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// FindBody returns the <body> element, or nil.
func FindBody(n *html.Node) *html.Node {
	return findElement(n, func(n *html.Node) bool { return n.Data == "body" })
}

// FindByID returns the first element whose id attribute equals id.
func FindByID(n *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}
	return findElement(n, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == id
	})
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

// Attr returns the value of attribute key and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether class appears in n's class attribute.
func HasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	v, _ := Attr(n, "class")
	return slices.Contains(strings.Fields(v), class)
}

// AddClass appends class to n's class attribute if missing.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			if strings.TrimSpace(a.Val) == "" {
				n.Attr[i].Val = class
			} else {
				n.Attr[i].Val = a.Val + " " + class
			}
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}

// RemoveClass drops class from n's class attribute.
func RemoveClass(n *html.Node, class string) {
	for i, a := range n.Attr {
		if a.Namespace != "" || a.Key != "class" {
			continue
		}
		fields := slices.DeleteFunc(strings.Fields(a.Val), func(f string) bool { return f == class })
		n.Attr[i].Val = strings.Join(fields, " ")
		return
	}
}

// IsAttached reports whether n is still reachable from a document node.
// Nodes under a parentless element (a detached fragment) are not attached.
func IsAttached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.DocumentNode {
			return true
		}
	}
	return false
}

// Path describes n's position as child indexes from the topmost ancestor,
// rendered like "0/1/4". Clients use it to locate the node in their own copy
// of the rendered tree.
func Path(n *html.Node) string {
	var idx []string
	for p := n; p != nil && p.Parent != nil; p = p.Parent {
		i := 0
		for s := p.PrevSibling; s != nil; s = s.PrevSibling {
			i++
		}
		idx = append(idx, strconv.Itoa(i))
	}
	slices.Reverse(idx)
	return strings.Join(idx, "/")
}

// MergeText folds the text siblings directly left and right of t into t.
// t must be a text node; its parent keeps a single text node where there
// used to be a run of them.
func MergeText(t *html.Node) {
	if t == nil || t.Type != html.TextNode || t.Parent == nil {
		return
	}
	parent := t.Parent
	for prev := t.PrevSibling; prev != nil && prev.Type == html.TextNode; prev = t.PrevSibling {
		t.Data = prev.Data + t.Data
		parent.RemoveChild(prev)
	}
	for next := t.NextSibling; next != nil && next.Type == html.TextNode; next = t.NextSibling {
		t.Data += next.Data
		parent.RemoveChild(next)
	}
}

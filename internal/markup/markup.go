// Package markup provides helpers over golang.org/x/net/html for working
// with document markup as a mutable node tree. The editor treats the
// serialized markup string as ground truth; this package is the bridge
// between that string and the live tree the editor mutates.
package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fragmentContext returns a fresh div element to parse fragments against.
// Fragment parsing needs an element context so that block-level content
// (headings, lists, pre) is kept intact rather than re-parented.
func fragmentContext() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
}

// ParseFragment parses serialized markup into detached top-level nodes.
// The returned nodes have no parent and can be appended anywhere.
func ParseFragment(src string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(src), fragmentContext())
}

// Render serializes a single node, including the node itself.
func Render(n *html.Node) string {
	var sb strings.Builder
	// html.Render only fails on unrenderable node types, which the editor
	// never constructs.
	_ = html.Render(&sb, n)
	return sb.String()
}

// RenderChildren serializes the children of n, the innerHTML equivalent.
func RenderChildren(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

// Attr returns the value of the named attribute, or "" when absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func HasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the named attribute if present.
func RemoveAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the node's class attribute contains name.
func HasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// IsElement reports whether n is an element with the given tag name.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsAttached reports whether n is root or a descendant of root.
func IsAttached(n, root *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// Closest walks from n up to (and including) root, returning the first node
// satisfying pred, or nil.
func Closest(n, root *html.Node, pred func(*html.Node) bool) *html.Node {
	for ; n != nil; n = n.Parent {
		if pred(n) {
			return n
		}
		if n == root {
			break
		}
	}
	return nil
}

// FindByID returns the first element under root with the given id attribute.
func FindByID(root *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && Attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits root and its descendants in document order. The visit
// function returns false to stop the walk.
func Walk(root *html.Node, visit func(*html.Node) bool) {
	var rec func(*html.Node) bool
	rec = func(n *html.Node) bool {
		if !visit(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !rec(c) {
				return false
			}
		}
		return true
	}
	rec(root)
}

// TextContent concatenates the text of n and all its descendants.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(m *html.Node) bool {
		if m.Type == html.TextNode {
			sb.WriteString(m.Data)
		}
		return true
	})
	return sb.String()
}

// ChildIndex returns n's position among its parent's children, or -1 when
// detached.
func ChildIndex(n *html.Node) int {
	if n == nil || n.Parent == nil {
		return -1
	}
	i := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n {
			return i
		}
		i++
	}
	return -1
}

// ChildAt returns the i-th child of n, or nil when out of range.
func ChildAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; c = c.NextSibling {
		i--
	}
	return c
}

// ChildCount returns the number of children of n.
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Detach removes n from its parent. Detaching an already-detached node is a
// no-op.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertChildAt inserts child as the i-th child of parent. An index at or
// past the end appends.
func InsertChildAt(parent, child *html.Node, i int) {
	before := ChildAt(parent, i)
	if before == nil {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, before)
}

// NewElement builds a detached element node for the given tag.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewText builds a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Rename changes an element's tag in place, keeping attributes and children.
func Rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// EscapeString escapes text for inclusion in markup.
func EscapeString(s string) string {
	return html.EscapeString(s)
}

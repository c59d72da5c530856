package editor

import (
	"golang.org/x/net/html"

	"github.com/marcus/quill/internal/markup"
)

// Anchor addresses a position in the surface's content tree: a rune offset
// inside a text node, or a child index inside an element. An anchor is only
// meaningful while its node remains attached to the surface; rebuilding the
// surface detaches every node and invalidates all anchors derived from it.
type Anchor struct {
	Node   *html.Node
	Offset int
}

// Range is a selection between two anchors. Start and End are expected to be
// in document order; a collapsed range is a caret.
type Range struct {
	Start Anchor
	End   Anchor
}

// Collapsed reports whether the range is a caret rather than a selection.
func (r Range) Collapsed() bool {
	return r.Start.Node == r.End.Node && r.Start.Offset == r.End.Offset
}

// Caret returns a collapsed range at the given anchor.
func Caret(a Anchor) Range {
	return Range{Start: a, End: a}
}

// attached reports whether the anchor's node hangs off root and the offset is
// within bounds for the node kind.
func (a Anchor) attached(root *html.Node) bool {
	if a.Node == nil || !markup.IsAttached(a.Node, root) {
		return false
	}
	if a.Offset < 0 {
		return false
	}
	if markup.IsText(a.Node) {
		return a.Offset <= len([]rune(a.Node.Data))
	}
	return a.Offset <= markup.ChildCount(a.Node)
}

// path returns the anchor's position as child indices from root, with the
// anchor offset as the final component. Paths compare lexicographically in
// document order.
func (a Anchor) path(root *html.Node) []int {
	var rev []int
	for n := a.Node; n != nil && n != root; n = n.Parent {
		rev = append(rev, markup.ChildIndex(n))
	}
	p := make([]int, 0, len(rev)+1)
	for i := len(rev) - 1; i >= 0; i-- {
		p = append(p, rev[i])
	}
	return append(p, a.Offset)
}

// compareAnchors orders two anchors within the same tree: -1, 0 or 1.
func compareAnchors(root *html.Node, a, b Anchor) int {
	pa, pb := a.path(root), b.path(root)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		switch {
		case pa[i] < pb[i]:
			return -1
		case pa[i] > pb[i]:
			return 1
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	}
	return 0
}

// ordered returns the range with Start before End.
func (r Range) ordered(root *html.Node) Range {
	if compareAnchors(root, r.Start, r.End) > 0 {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

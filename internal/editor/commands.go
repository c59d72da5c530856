package editor

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/marcus/quill/internal/markup"
)

// Command names the surface's formatting primitives. The names follow the
// classic editing-command vocabulary so toolbar wiring stays obvious.
type Command string

const (
	CmdBold          Command = "bold"
	CmdItalic        Command = "italic"
	CmdUnorderedList Command = "insertUnorderedList"
	CmdOrderedList   Command = "insertOrderedList"
	CmdFormatBlock   Command = "formatBlock"
	CmdCreateLink    Command = "createLink"
)

var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true,
	"blockquote": true, "pre": true, "li": true,
}

var inlineTags = map[string]bool{
	"b": true, "strong": true, "i": true, "em": true,
	"a": true, "span": true, "code": true, "u": true,
}

// ExecCommand applies a formatting command to the current selection. Inline
// toggles with a collapsed selection are a no-op on the tree; the recomputed
// format state reflects the caret's ancestry instead. Unknown commands return
// ErrUnsupportedCommand so callers can degrade.
func (s *Surface) ExecCommand(cmd Command, value string) error {
	switch cmd {
	case CmdBold:
		return s.toggleInline("b", "strong")
	case CmdItalic:
		return s.toggleInline("i", "em")
	case CmdCreateLink:
		if strings.TrimSpace(value) == "" {
			return ErrUnsupportedCommand
		}
		return s.wrapSelection("a", map[string]string{"href": value})
	case CmdUnorderedList:
		return s.toggleList("ul")
	case CmdOrderedList:
		return s.toggleList("ol")
	case CmdFormatBlock:
		return s.formatBlock(value)
	default:
		return ErrUnsupportedCommand
	}
}

// QueryCommandState reports whether a toggle command is active for the
// current caret or selection. Non-toggle commands report false.
func (s *Surface) QueryCommandState(cmd Command) bool {
	sel, ok := s.Selection()
	if !ok || !sel.Start.attached(s.root) {
		return false
	}
	switch cmd {
	case CmdBold:
		return s.inlineAncestor(sel.Start.Node, "b", "strong") != nil
	case CmdItalic:
		return s.inlineAncestor(sel.Start.Node, "i", "em") != nil
	case CmdUnorderedList:
		return s.listAncestor(sel.Start.Node) == "ul"
	case CmdOrderedList:
		return s.listAncestor(sel.Start.Node) == "ol"
	default:
		return false
	}
}

// BlockTag returns the tag of the nearest block-level ancestor of the
// selection start, or "" when there is none.
func (s *Surface) BlockTag() string {
	sel, ok := s.Selection()
	if !ok || !sel.Start.attached(s.root) {
		return ""
	}
	b := markup.Closest(sel.Start.Node, s.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n != s.root && blockTags[n.Data]
	})
	if b == nil {
		return ""
	}
	return b.Data
}

func (s *Surface) inlineAncestor(n *html.Node, tags ...string) *html.Node {
	return markup.Closest(n, s.root, func(m *html.Node) bool {
		if m.Type != html.ElementNode || m == s.root {
			return false
		}
		for _, t := range tags {
			if m.Data == t {
				return true
			}
		}
		return false
	})
}

func (s *Surface) listAncestor(n *html.Node) string {
	li := markup.Closest(n, s.root, func(m *html.Node) bool {
		return markup.IsElement(m, "li")
	})
	if li == nil || li.Parent == nil {
		return ""
	}
	if li.Parent.Data == "ul" || li.Parent.Data == "ol" {
		return li.Parent.Data
	}
	return ""
}

// toggleInline wraps the selected text in tag, or unwraps the matching
// ancestor when the selection is already inside one.
func (s *Surface) toggleInline(tag string, altTags ...string) error {
	sel, ok := s.Selection()
	if !ok || sel.Collapsed() {
		return nil
	}
	tags := append([]string{tag}, altTags...)
	if el := s.inlineAncestor(sel.Start.Node, tags...); el != nil {
		s.unwrapElement(el)
		if other := s.inlineAncestor(sel.End.Node, tags...); other != nil {
			s.unwrapElement(other)
		}
		s.notify()
		return nil
	}
	return s.wrapSelection(tag, nil)
}

// unwrapElement splices el's children into its parent at el's position.
// Moved nodes stay alive, so selection anchors inside el remain attached.
func (s *Surface) unwrapElement(el *html.Node) {
	parent := el.Parent
	if parent == nil {
		return
	}
	idx := markup.ChildIndex(el)
	for el.FirstChild != nil {
		c := el.FirstChild
		el.RemoveChild(c)
		markup.InsertChildAt(parent, c, idx)
		idx++
	}
	parent.RemoveChild(el)
}

// textSlice is the portion of one text node covered by a selection.
type textSlice struct {
	node       *html.Node
	start, end int
}

// selectedTextSlices collects the text-node portions covered by r, in
// document order, skipping content inside atomic blocks.
func (s *Surface) selectedTextSlices(r Range) []textSlice {
	r = r.ordered(s.root)
	var out []textSlice
	markup.Walk(s.root, func(n *html.Node) bool {
		if isAtomicBlock(n) {
			return false
		}
		if !markup.IsText(n) {
			return true
		}
		length := len([]rune(n.Data))
		if length == 0 {
			return true
		}
		nodeStart := Anchor{Node: n, Offset: 0}
		nodeEnd := Anchor{Node: n, Offset: length}
		if compareAnchors(s.root, nodeEnd, r.Start) <= 0 {
			return true
		}
		if compareAnchors(s.root, nodeStart, r.End) >= 0 {
			return true
		}
		sl := textSlice{node: n, start: 0, end: length}
		if n == r.Start.Node {
			sl.start = r.Start.Offset
		}
		if n == r.End.Node {
			sl.end = r.End.Offset
		}
		if sl.start < sl.end {
			out = append(out, sl)
		}
		return true
	})
	return out
}

// wrapSelection wraps every selected text portion in a new element with the
// given tag and attributes, then selects the wrapped content.
func (s *Surface) wrapSelection(tag string, attrs map[string]string) error {
	sel, ok := s.Selection()
	if !ok || sel.Collapsed() {
		return nil
	}
	slices := s.selectedTextSlices(sel)
	if len(slices) == 0 {
		return nil
	}
	var first, last *html.Node
	for _, sl := range slices {
		mid := s.wrapTextSlice(sl, tag, attrs)
		if first == nil {
			first = mid
		}
		last = mid
	}
	if first != nil && last != nil {
		_ = s.SetSelection(Range{
			Start: Anchor{Node: first, Offset: 0},
			End:   Anchor{Node: last, Offset: len([]rune(last.Data))},
		})
	}
	s.notify()
	return nil
}

// wrapTextSlice splits the slice's text node around the covered portion and
// wraps that portion in a new element. It returns the wrapped text node.
func (s *Surface) wrapTextSlice(sl textSlice, tag string, attrs map[string]string) *html.Node {
	parent := sl.node.Parent
	idx := markup.ChildIndex(sl.node)
	runes := []rune(sl.node.Data)

	el := markup.NewElement(tag)
	for k, v := range attrs {
		markup.SetAttr(el, k, v)
	}
	mid := markup.NewText(string(runes[sl.start:sl.end]))
	el.AppendChild(mid)

	parent.RemoveChild(sl.node)
	if sl.start > 0 {
		markup.InsertChildAt(parent, markup.NewText(string(runes[:sl.start])), idx)
		idx++
	}
	markup.InsertChildAt(parent, el, idx)
	idx++
	if sl.end < len(runes) {
		markup.InsertChildAt(parent, markup.NewText(string(runes[sl.end:])), idx)
	}
	return mid
}

// toggleList wraps the caret's block in a list of the given type, converts a
// list of the other type, or unwraps when already in the requested type.
func (s *Surface) toggleList(listTag string) error {
	sel, ok := s.Selection()
	if !ok || !sel.Start.attached(s.root) {
		return nil
	}
	li := markup.Closest(sel.Start.Node, s.root, func(m *html.Node) bool {
		return markup.IsElement(m, "li")
	})
	if li != nil && li.Parent != nil && (li.Parent.Data == "ul" || li.Parent.Data == "ol") {
		list := li.Parent
		if list.Data != listTag {
			markup.Rename(list, listTag)
			s.notify()
			return nil
		}
		s.unwrapListItem(list, li)
		s.notify()
		return nil
	}
	s.wrapCaretBlockInList(sel.Start, listTag)
	s.notify()
	return nil
}

// unwrapListItem lifts li's content out of list into a paragraph placed where
// the list is (single item) or immediately after it.
func (s *Surface) unwrapListItem(list, li *html.Node) {
	parent := list.Parent
	p := markup.NewElement("p")
	for li.FirstChild != nil {
		c := li.FirstChild
		li.RemoveChild(c)
		p.AppendChild(c)
	}
	list.RemoveChild(li)
	if list.FirstChild == nil {
		idx := markup.ChildIndex(list)
		parent.RemoveChild(list)
		markup.InsertChildAt(parent, p, idx)
		return
	}
	markup.InsertChildAt(parent, p, markup.ChildIndex(list)+1)
}

// wrapCaretBlockInList converts the block containing the caret into the sole
// item of a new list at the block's position.
func (s *Surface) wrapCaretBlockInList(at Anchor, listTag string) {
	target := s.topLevelAncestor(at.Node)
	if target == nil {
		// Empty surface: start a list with an empty item at the caret.
		list := markup.NewElement(listTag)
		item := markup.NewElement("li")
		list.AppendChild(item)
		idx := at.Offset
		if at.Node != s.root {
			idx = markup.ChildCount(s.root)
		}
		markup.InsertChildAt(s.root, list, idx)
		_ = s.SetSelection(Caret(Anchor{Node: item, Offset: 0}))
		return
	}
	idx := markup.ChildIndex(target)
	list := markup.NewElement(listTag)
	item := markup.NewElement("li")
	list.AppendChild(item)
	s.root.RemoveChild(target)
	if target.Type == html.ElementNode && blockTags[target.Data] {
		// Shed the old block wrapper: its children become the item content.
		for target.FirstChild != nil {
			c := target.FirstChild
			target.RemoveChild(c)
			item.AppendChild(c)
		}
	} else {
		item.AppendChild(target)
	}
	markup.InsertChildAt(s.root, list, idx)
}

// topLevelAncestor returns the child of root containing n, or nil when n is
// the root itself or detached.
func (s *Surface) topLevelAncestor(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Parent == s.root {
			return n
		}
		if n == s.root {
			return nil
		}
	}
	return nil
}

// formatBlock renames the caret's block element to the given tag, or wraps a
// bare top-level inline run in a new block.
func (s *Surface) formatBlock(value string) error {
	tag := strings.ToLower(strings.Trim(value, "<>"))
	switch tag {
	case "p", "h1", "h2", "h3", "blockquote", "pre":
	default:
		return ErrUnsupportedCommand
	}
	sel, ok := s.Selection()
	if !ok || !sel.Start.attached(s.root) {
		return nil
	}
	b := markup.Closest(sel.Start.Node, s.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n != s.root && blockTags[n.Data] && n.Data != "li"
	})
	if b != nil && !isAtomicBlock(b) {
		markup.Rename(b, tag)
		s.notify()
		return nil
	}
	s.wrapInlineRun(sel.Start, tag)
	s.notify()
	return nil
}

// wrapInlineRun gathers the contiguous run of top-level inline content around
// the caret into a new block element.
func (s *Surface) wrapInlineRun(at Anchor, tag string) {
	target := s.topLevelAncestor(at.Node)
	if target == nil || !isInlineContent(target) {
		return
	}
	first, last := target, target
	for first.PrevSibling != nil && isInlineContent(first.PrevSibling) {
		first = first.PrevSibling
	}
	for last.NextSibling != nil && isInlineContent(last.NextSibling) {
		last = last.NextSibling
	}
	idx := markup.ChildIndex(first)
	block := markup.NewElement(tag)
	for n := first; n != nil; {
		next := n.NextSibling
		s.root.RemoveChild(n)
		block.AppendChild(n)
		if n == last {
			break
		}
		n = next
	}
	markup.InsertChildAt(s.root, block, idx)
}

// isInlineContent reports whether a top-level node belongs to an inline run
// rather than being a block of its own.
func isInlineContent(n *html.Node) bool {
	if markup.IsText(n) {
		return true
	}
	if n.Type != html.ElementNode || isAtomicBlock(n) {
		return false
	}
	return inlineTags[n.Data] || n.Data == "br"
}

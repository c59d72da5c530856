// Package editor implements the in-place rich-text editing engine: a headless
// editable surface over a markup tree, selection persistence, format state
// tracking, the content mutation pipeline, embedded image blocks and their
// drag relocation, and the composition-root controller with autosave.
//
// The surface's serialized markup is the document's ground truth. Formatting
// commands mutate the live tree directly; structural changes (embed insertion,
// drag relocation, wholesale replacement) go through a hard remount that
// rebuilds the tree from the serialized string.
package editor

import (
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/marcus/quill/internal/markup"
)

var (
	// ErrNotAttached is returned when an anchor or range no longer hangs off
	// the surface tree, typically after a remount.
	ErrNotAttached = errors.New("editor: anchor not attached to surface")

	// ErrUnsupportedCommand is returned by ExecCommand for commands the
	// surface cannot perform. Callers degrade rather than fail the edit.
	ErrUnsupportedCommand = errors.New("editor: unsupported format command")
)

// Surface is the live, directly editable region: a headless markup tree
// standing in for a contenteditable host. It owns the current selection and
// focus flag, and notifies registered hooks after every subtree mutation so
// derived state (active formats) can be recomputed.
type Surface struct {
	root    *html.Node
	sel     *Range
	focused bool
	hooks   []func()
}

// NewSurface builds a surface from serialized markup.
func NewSurface(content string) *Surface {
	s := &Surface{root: markup.NewElement("div")}
	s.setContent(content)
	return s
}

// Root returns the surface's container node. Children of the root are the
// document's top-level nodes.
func (s *Surface) Root() *html.Node { return s.root }

// Focus marks the surface as focused. Collaborator dialogs steal focus; the
// pipeline refocuses before every mutation.
func (s *Surface) Focus() { s.focused = true }

// Blur drops focus, e.g. when a dialog opens.
func (s *Surface) Blur() { s.focused = false }

// Focused reports whether the surface currently has focus.
func (s *Surface) Focused() bool { return s.focused }

// OnMutate registers a hook invoked after any structural mutation of the
// surface subtree (insertion, removal, attribute or text change). This is the
// headless equivalent of a subtree mutation observer.
func (s *Surface) OnMutate(fn func()) {
	s.hooks = append(s.hooks, fn)
}

func (s *Surface) notify() {
	for _, fn := range s.hooks {
		fn()
	}
}

// InnerHTML serializes the surface's current content.
func (s *Surface) InnerHTML() string {
	return markup.RenderChildren(s.root)
}

// SetInnerHTML tears down the tree and rebuilds it from serialized markup.
// All previously stored anchors become invalid; the selection is cleared.
func (s *Surface) SetInnerHTML(content string) {
	s.setContent(content)
	s.notify()
}

func (s *Surface) setContent(content string) {
	for c := s.root.FirstChild; c != nil; {
		next := c.NextSibling
		s.root.RemoveChild(c)
		c = next
	}
	nodes, err := markup.ParseFragment(content)
	if err != nil {
		// The html5 parser accepts nearly anything; keep whatever it could
		// recover plus the raw text so no user content is silently lost.
		nodes = append(nodes, markup.NewText(content))
	}
	for _, n := range nodes {
		s.root.AppendChild(n)
	}
	s.sel = nil
}

// Selection returns the current selection, if any.
func (s *Surface) Selection() (Range, bool) {
	if s.sel == nil {
		return Range{}, false
	}
	return *s.sel, true
}

// SetSelection makes r the active selection. Both anchors must be attached.
func (s *Surface) SetSelection(r Range) error {
	if !r.Start.attached(s.root) || !r.End.attached(s.root) {
		return ErrNotAttached
	}
	ordered := r.ordered(s.root)
	s.sel = &ordered
	return nil
}

// ClearSelection removes the active selection.
func (s *Surface) ClearSelection() { s.sel = nil }

// Contains reports whether n is part of the surface tree.
func (s *Surface) Contains(n *html.Node) bool {
	return markup.IsAttached(n, s.root)
}

// EndOfContent returns a caret anchor after the last top-level node.
func (s *Surface) EndOfContent() Anchor {
	return Anchor{Node: s.root, Offset: markup.ChildCount(s.root)}
}

// caret returns the active caret position, falling back to end of content.
func (s *Surface) caret() Anchor {
	if s.sel != nil && s.sel.End.attached(s.root) {
		return s.sel.End
	}
	return s.EndOfContent()
}

// DeleteRange removes the content covered by r and returns the collapsed
// caret anchor at the deletion point. A collapsed or detached range deletes
// nothing.
func (s *Surface) DeleteRange(r Range) Anchor {
	if !r.Start.attached(s.root) || !r.End.attached(s.root) {
		return s.EndOfContent()
	}
	if r.Collapsed() {
		return r.Start
	}
	r = r.ordered(s.root)
	defer s.notify()

	start, end := r.Start, r.End

	// Entire range inside one text node: splice the runes.
	if start.Node == end.Node && markup.IsText(start.Node) {
		runes := []rune(start.Node.Data)
		start.Node.Data = string(runes[:start.Offset]) + string(runes[end.Offset:])
		return Anchor{Node: start.Node, Offset: start.Offset}
	}

	lca := commonAncestor(start.Node, end.Node, s.root)

	// Trim the start side: drop everything after the anchor within its
	// subtree, up to (but excluding) the child of the common ancestor.
	_, startIdx := trimAfter(start, lca)
	// Trim the end side symmetrically: drop everything before the anchor.
	endTop := trimBefore(end, lca)

	// Remove whole children of the common ancestor strictly between the two
	// boundary subtrees.
	removeBetween(lca, startIdx, endTop)

	return Anchor{Node: start.Node, Offset: start.Offset}
}

// commonAncestor returns the lowest node containing both a and b.
func commonAncestor(a, b, root *html.Node) *html.Node {
	seen := map[*html.Node]bool{}
	for n := a; n != nil; n = n.Parent {
		seen[n] = true
		if n == root {
			break
		}
	}
	for n := b; n != nil; n = n.Parent {
		if seen[n] {
			return n
		}
		if n == root {
			break
		}
	}
	return root
}

// trimAfter removes all content after anchor a within its subtree, walking up
// to lca. It returns the child of lca the anchor lives in (nil when the
// anchor is on lca itself) and the lca child index after which removal of
// whole siblings may begin.
func trimAfter(a Anchor, lca *html.Node) (*html.Node, int) {
	if a.Node == lca {
		return nil, a.Offset - 1
	}
	if markup.IsText(a.Node) {
		runes := []rune(a.Node.Data)
		a.Node.Data = string(runes[:a.Offset])
	} else {
		removeChildrenFrom(a.Node, a.Offset)
	}
	n := a.Node
	for n.Parent != lca {
		removeFollowingSiblings(n)
		n = n.Parent
	}
	// Siblings at the lca level are handled by removeBetween so the end-side
	// subtree survives the start-side trim.
	return n, markup.ChildIndex(n)
}

// trimBefore removes all content before anchor a within its subtree, walking
// up to lca. It returns the child of lca the anchor lives in (nil when the
// anchor is on lca itself).
func trimBefore(a Anchor, lca *html.Node) *html.Node {
	if a.Node == lca {
		// Deletion of whole children before this index is handled by the
		// caller via removeBetween.
		return markup.ChildAt(lca, a.Offset)
	}
	if markup.IsText(a.Node) {
		runes := []rune(a.Node.Data)
		a.Node.Data = string(runes[a.Offset:])
	} else {
		removeChildrenUntil(a.Node, a.Offset)
	}
	n := a.Node
	for n.Parent != lca {
		removePrecedingSiblings(n)
		n = n.Parent
	}
	return n
}

// removeBetween removes children of parent after index startIdx and before
// the endTop node (or all trailing children when endTop is nil).
func removeBetween(parent *html.Node, startIdx int, endTop *html.Node) {
	c := markup.ChildAt(parent, startIdx+1)
	for c != nil && c != endTop {
		next := c.NextSibling
		parent.RemoveChild(c)
		c = next
	}
}

func removeChildrenFrom(n *html.Node, idx int) {
	c := markup.ChildAt(n, idx)
	for c != nil {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func removeChildrenUntil(n *html.Node, idx int) {
	for i := 0; i < idx; i++ {
		if n.FirstChild == nil {
			return
		}
		n.RemoveChild(n.FirstChild)
	}
}

func removeFollowingSiblings(n *html.Node) {
	for sib := n.NextSibling; sib != nil; {
		next := sib.NextSibling
		n.Parent.RemoveChild(sib)
		sib = next
	}
}

func removePrecedingSiblings(n *html.Node) {
	for sib := n.Parent.FirstChild; sib != nil && sib != n; {
		next := sib.NextSibling
		n.Parent.RemoveChild(sib)
		sib = next
	}
}

// InsertFragment splices detached nodes into the tree at the given anchor and
// returns the caret anchor immediately after the last inserted node. A
// detached anchor falls back to end of content.
func (s *Surface) InsertFragment(at Anchor, nodes []*html.Node) Anchor {
	if !at.attached(s.root) {
		at = s.EndOfContent()
	}
	if len(nodes) == 0 {
		return at
	}
	defer s.notify()

	parent := at.Node
	idx := at.Offset
	if markup.IsText(at.Node) {
		parent, idx = s.splitText(at)
	}
	for _, n := range nodes {
		markup.InsertChildAt(parent, n, idx)
		idx++
	}
	return Anchor{Node: parent, Offset: idx}
}

// splitText splits a text node at the anchor offset and returns the parent
// element and child index of the gap. Splits at either end avoid creating
// empty text nodes.
func (s *Surface) splitText(at Anchor) (*html.Node, int) {
	parent := at.Node.Parent
	idx := markup.ChildIndex(at.Node)
	runes := []rune(at.Node.Data)
	switch {
	case at.Offset <= 0:
		return parent, idx
	case at.Offset >= len(runes):
		return parent, idx + 1
	default:
		tail := markup.NewText(string(runes[at.Offset:]))
		at.Node.Data = string(runes[:at.Offset])
		markup.InsertChildAt(parent, tail, idx+1)
		return parent, idx + 1
	}
}

// InsertText types text at the caret, replacing any selected content first.
func (s *Surface) InsertText(text string) {
	if text == "" {
		return
	}
	caret := s.caret()
	if s.sel != nil && !s.sel.Collapsed() {
		caret = s.DeleteRange(*s.sel)
	}
	defer s.notify()

	if markup.IsText(caret.Node) {
		runes := []rune(caret.Node.Data)
		caret.Node.Data = string(runes[:caret.Offset]) + text + string(runes[caret.Offset:])
		caret.Offset += len([]rune(text))
		s.sel = &Range{Start: caret, End: caret}
		return
	}

	// Element anchor: extend an adjacent text node when possible so typing
	// does not fragment the tree.
	if prev := markup.ChildAt(caret.Node, caret.Offset-1); markup.IsText(prev) {
		prev.Data += text
		a := Anchor{Node: prev, Offset: len([]rune(prev.Data))}
		s.sel = &Range{Start: a, End: a}
		return
	}
	tn := markup.NewText(text)
	markup.InsertChildAt(caret.Node, tn, caret.Offset)
	a := Anchor{Node: tn, Offset: len([]rune(text))}
	s.sel = &Range{Start: a, End: a}
}

// InsertParagraphBreak splits the content at the caret into two blocks,
// carrying everything after the caret (with its inline wrappers) into a fresh
// block placed after the current one. Inside a list item the split produces a
// sibling item; elsewhere it produces a paragraph. Any active selection is
// deleted first.
func (s *Surface) InsertParagraphBreak() {
	caret := s.caret()
	if s.sel != nil && !s.sel.Collapsed() {
		caret = s.DeleteRange(*s.sel)
	}

	parent, idx := caret.Node, caret.Offset
	if markup.IsText(caret.Node) {
		parent, idx = s.splitText(caret)
	}
	defer s.notify()

	if parent == s.root {
		fresh := markup.NewElement("p")
		markup.InsertChildAt(s.root, fresh, idx)
		a := Anchor{Node: fresh, Offset: 0}
		s.sel = &Range{Start: a, End: a}
		return
	}

	// The split boundary is the nearest list item, or else the top-level
	// block the caret lives in.
	splitRoot := parent
	for splitRoot.Parent != s.root {
		splitRoot = splitRoot.Parent
	}
	tag := "p"
	if li := markup.Closest(parent, s.root, func(n *html.Node) bool { return markup.IsElement(n, "li") }); li != nil {
		splitRoot = li
		tag = "li"
	}
	fresh := markup.NewElement(tag)

	// Mirror the inline ancestors between the split point and the boundary
	// so the carried tail keeps its formatting.
	var levels []*html.Node
	for n := parent; n != splitRoot; n = n.Parent {
		levels = append(levels, n)
	}
	wrappers := make([]*html.Node, len(levels))
	for i, lvl := range levels {
		w := &html.Node{Type: html.ElementNode, Data: lvl.Data, DataAtom: lvl.DataAtom}
		w.Attr = append([]html.Attribute(nil), lvl.Attr...)
		wrappers[i] = w
	}
	for i := len(wrappers) - 1; i >= 1; i-- {
		wrappers[i].AppendChild(wrappers[i-1])
	}

	inner := fresh
	if len(wrappers) > 0 {
		fresh.AppendChild(wrappers[len(wrappers)-1])
		inner = wrappers[0]
	}
	for c := markup.ChildAt(parent, idx); c != nil; {
		next := c.NextSibling
		markup.Detach(c)
		inner.AppendChild(c)
		c = next
	}
	for i, lvl := range levels {
		dst := fresh
		if i+1 < len(wrappers) {
			dst = wrappers[i+1]
		}
		for sib := lvl.NextSibling; sib != nil; {
			next := sib.NextSibling
			markup.Detach(sib)
			dst.AppendChild(sib)
			sib = next
		}
	}

	markup.InsertChildAt(splitRoot.Parent, fresh, markup.ChildIndex(splitRoot)+1)
	a := Anchor{Node: fresh, Offset: 0}
	s.sel = &Range{Start: a, End: a}
}

// DeleteBack deletes the selection, or the rune (or atomic block) before the
// caret when the selection is collapsed.
func (s *Surface) DeleteBack() {
	if s.sel == nil {
		return
	}
	if !s.sel.Collapsed() {
		caret := s.DeleteRange(*s.sel)
		s.sel = &Range{Start: caret, End: caret}
		return
	}
	caret := s.sel.Start
	if !caret.attached(s.root) {
		return
	}
	defer s.notify()

	if markup.IsText(caret.Node) && caret.Offset > 0 {
		runes := []rune(caret.Node.Data)
		caret.Node.Data = string(runes[:caret.Offset-1]) + string(runes[caret.Offset:])
		caret.Offset--
		if caret.Node.Data == "" {
			parent := caret.Node.Parent
			idx := markup.ChildIndex(caret.Node)
			parent.RemoveChild(caret.Node)
			caret = Anchor{Node: parent, Offset: idx}
		}
		s.sel = &Range{Start: caret, End: caret}
		return
	}

	// At the start of a text node or on an element gap: step to the previous
	// sibling and delete into it.
	parent, idx := caret.Node, caret.Offset
	if markup.IsText(caret.Node) {
		parent = caret.Node.Parent
		idx = markup.ChildIndex(caret.Node)
	}
	prev := markup.ChildAt(parent, idx-1)
	switch {
	case prev == nil:
		// Nothing before the caret at this level.
	case isAtomicBlock(prev):
		parent.RemoveChild(prev)
		caret = Anchor{Node: parent, Offset: idx - 1}
		s.sel = &Range{Start: caret, End: caret}
	case markup.IsText(prev):
		a := Anchor{Node: prev, Offset: len([]rune(prev.Data))}
		s.sel = &Range{Start: a, End: a}
		s.DeleteBack()
	default:
		a := Anchor{Node: prev, Offset: markup.ChildCount(prev)}
		s.sel = &Range{Start: a, End: a}
		s.DeleteBack()
	}
}

// isAtomicBlock reports whether n is a non-editable unit that is deleted and
// moved as a whole rather than entered.
func isAtomicBlock(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && markup.Attr(n, "contenteditable") == "false"
}

// MoveCaretForward advances the caret one position in document order,
// skipping over atomic blocks as single units.
func (s *Surface) MoveCaretForward() {
	a := s.caret()
	next, ok := s.nextPosition(a)
	if ok {
		s.sel = &Range{Start: next, End: next}
	}
}

// MoveCaretBackward moves the caret one position back in document order.
func (s *Surface) MoveCaretBackward() {
	a := s.caret()
	prev, ok := s.prevPosition(a)
	if ok {
		s.sel = &Range{Start: prev, End: prev}
	}
}

func (s *Surface) nextPosition(a Anchor) (Anchor, bool) {
	if markup.IsText(a.Node) {
		if a.Offset < len([]rune(a.Node.Data)) {
			return Anchor{Node: a.Node, Offset: a.Offset + 1}, true
		}
		return Anchor{Node: a.Node.Parent, Offset: markup.ChildIndex(a.Node) + 1}, true
	}
	child := markup.ChildAt(a.Node, a.Offset)
	if child == nil {
		if a.Node == s.root {
			return a, false
		}
		return Anchor{Node: a.Node.Parent, Offset: markup.ChildIndex(a.Node) + 1}, true
	}
	if isAtomicBlock(child) {
		return Anchor{Node: a.Node, Offset: a.Offset + 1}, true
	}
	if markup.IsText(child) {
		if len([]rune(child.Data)) == 0 {
			return Anchor{Node: a.Node, Offset: a.Offset + 1}, true
		}
		return Anchor{Node: child, Offset: 1}, true
	}
	return Anchor{Node: child, Offset: 0}, true
}

func (s *Surface) prevPosition(a Anchor) (Anchor, bool) {
	if markup.IsText(a.Node) {
		if a.Offset > 0 {
			return Anchor{Node: a.Node, Offset: a.Offset - 1}, true
		}
		return Anchor{Node: a.Node.Parent, Offset: markup.ChildIndex(a.Node)}, true
	}
	prev := markup.ChildAt(a.Node, a.Offset-1)
	if prev == nil {
		if a.Node == s.root {
			return a, false
		}
		return Anchor{Node: a.Node.Parent, Offset: markup.ChildIndex(a.Node)}, true
	}
	if isAtomicBlock(prev) {
		return Anchor{Node: a.Node, Offset: a.Offset - 1}, true
	}
	if markup.IsText(prev) {
		n := len([]rune(prev.Data))
		if n == 0 {
			return Anchor{Node: a.Node, Offset: a.Offset - 1}, true
		}
		return Anchor{Node: prev, Offset: n - 1}, true
	}
	return Anchor{Node: prev, Offset: markup.ChildCount(prev)}, true
}

// TextInRange returns the plain text covered by r, in document order. A
// collapsed or detached range yields "".
func (s *Surface) TextInRange(r Range) string {
	if !r.Start.attached(s.root) || !r.End.attached(s.root) || r.Collapsed() {
		return ""
	}
	r = r.ordered(s.root)

	var sb strings.Builder
	markup.Walk(s.root, func(n *html.Node) bool {
		if !markup.IsText(n) {
			return true
		}
		runes := []rune(n.Data)

		lo := 0
		if n == r.Start.Node {
			lo = r.Start.Offset
		} else if compareAnchors(s.root, Anchor{Node: n, Offset: len(runes)}, r.Start) <= 0 {
			return true // entirely before the range
		}

		hi := len(runes)
		if n == r.End.Node {
			hi = r.End.Offset
		} else if compareAnchors(s.root, Anchor{Node: n, Offset: 0}, r.End) >= 0 {
			return true // entirely after the range
		}

		if lo < hi {
			sb.WriteString(string(runes[lo:hi]))
		}
		return true
	})
	return sb.String()
}

// FindByID returns the element with the given id attribute, or nil.
func (s *Surface) FindByID(id string) *html.Node {
	return markup.FindByID(s.root, id)
}

// RemoveNode detaches n from the surface tree.
func (s *Surface) RemoveNode(n *html.Node) {
	if !s.Contains(n) || n == s.root {
		return
	}
	markup.Detach(n)
	s.notify()
}

package editor

import (
	"log/slog"

	"golang.org/x/net/html"

	"github.com/marcus/quill/internal/markup"
)

// attrDragging dims the source block while a drag is in flight. The renderer
// treats it like the half-opacity styling a pointer drag would apply.
const attrDragging = "data-dragging"

// DragState tracks the reorder controller's lifecycle:
// Idle -> Dragging -> (Dropped | Cancelled) -> Idle.
type DragState int

const (
	DragIdle DragState = iota
	Dragging
)

// DragPayload carries what a pickup stashes: the block's id and its
// self-serialized markup. A payload missing either half is malformed and a
// drop treats it as a silent cancellation.
type DragPayload struct {
	ID     string
	Markup string
}

// DropEffect declares the drag's affinity. Only moves are supported: a drop
// relocates the block rather than copying it.
type DropEffect int

// DropEffectMove is the only effect the controller ever declares.
const DropEffectMove DropEffect = iota

// DragReorderController relocates embedded blocks within the editable
// surface. Only embedded blocks are draggable; free text is not.
type DragReorderController struct {
	surface  *Surface
	pipeline *ContentMutationPipeline
	logger   *slog.Logger

	state   DragState
	dragged *html.Node
	payload DragPayload
}

// NewDragReorderController wires the controller to the surface it reorders
// and the pipeline whose hard completion path finalizes a drop.
func NewDragReorderController(s *Surface, p *ContentMutationPipeline, logger *slog.Logger) *DragReorderController {
	if logger == nil {
		logger = slog.Default()
	}
	return &DragReorderController{surface: s, pipeline: p, logger: logger}
}

// State returns the controller's current lifecycle state.
func (c *DragReorderController) State() DragState { return c.state }

// Payload returns the stashed drag payload (zero value when idle).
func (c *DragReorderController) Payload() DragPayload { return c.payload }

// Pickup starts a drag from the given node. It walks ancestors up to the
// surface root looking for an embedded block; when none is found the drag is
// suppressed entirely (only embedded blocks are draggable) and Pickup
// reports false. On success the block is stashed, its id and self-serialized
// markup become the payload, and the source node is dimmed.
func (c *DragReorderController) Pickup(target *html.Node) bool {
	if target == nil || !c.surface.Contains(target) {
		return false
	}
	block := markup.Closest(target, c.surface.Root(), func(n *html.Node) bool {
		return n.Type == html.ElementNode && markup.HasClass(n, embedClass)
	})
	if block == nil || block == c.surface.Root() {
		return false
	}

	self := markup.Attr(block, attrSelf)
	if self == "" {
		// Blocks re-created from a previous drop lose data-self; fall back
		// to serializing the node itself.
		self = markup.Render(block)
	}

	c.dragged = block
	c.payload = DragPayload{ID: markup.Attr(block, "id"), Markup: self}
	c.state = Dragging
	markup.SetAttr(block, attrDragging, "true")
	return true
}

// DragOver is called while the drag tracks across the surface; it declares
// move affinity so a drop is permitted anywhere inside it.
func (c *DragReorderController) DragOver() DropEffect { return DropEffectMove }

// Drop relocates the dragged block to the given point. A nil or detached
// point falls back to the live selection, then to end of content — the same
// precedence rich insertion uses. A malformed payload cancels silently; user
// mistakes (dropping from outside the surface) are not errors.
func (c *DragReorderController) Drop(point *Anchor) {
	if c.state != Dragging {
		return
	}
	if c.payload.ID == "" || c.payload.Markup == "" {
		c.Cancel()
		return
	}
	c.undim()

	// Remove the original block and a single adjacent non-breaking-space
	// artifact so stray whitespace does not accumulate across drops.
	if orig := c.surface.FindByID(c.payload.ID); orig != nil {
		if sib := orig.NextSibling; markup.IsText(sib) && sib.Data == nbsp {
			c.surface.RemoveNode(sib)
		}
		c.surface.RemoveNode(orig)
	} else {
		c.logger.Debug("dragged block not found for removal", "id", c.payload.ID)
	}

	caret := c.resolveDropPoint(point)

	// Replace any content selected at the drop point.
	if sel, ok := c.surface.Selection(); ok && !sel.Collapsed() {
		caret = c.surface.DeleteRange(sel)
	}

	nodes, err := markup.ParseFragment(c.payload.Markup)
	if err != nil {
		// Degrade like the insertion pipeline: append the raw markup.
		c.logger.Warn("drop fragment parse failed, appending raw markup", "error", err)
		c.pipeline.ReplaceAll(c.surface.InnerHTML() + c.payload.Markup)
	} else {
		after := c.surface.InsertFragment(caret, nodes)
		_ = c.surface.SetSelection(Caret(after))
		// Relocation is structural: the rebuilt surface must re-initialize
		// the block as a drag source.
		c.pipeline.Complete(HardPath)
	}

	c.settleCaret()
	c.dragged = nil
	c.payload = DragPayload{}
	c.state = DragIdle
}

// resolveDropPoint maps the drop coordinates to a caret, falling back to the
// live selection and finally end of content when the point is missing or
// outside the surface.
func (c *DragReorderController) resolveDropPoint(point *Anchor) Anchor {
	if point != nil && point.attached(c.surface.root) {
		_ = c.surface.SetSelection(Caret(*point))
		return *point
	}
	if sel, ok := c.surface.Selection(); ok && sel.Start.attached(c.surface.root) {
		return sel.Start
	}
	return c.surface.EndOfContent()
}

// settleCaret re-locates the dropped block by id in the rebuilt surface and
// places the caret just after it (skipping a trailing non-breaking-space
// artifact) so typing continues naturally post-drop.
func (c *DragReorderController) settleCaret() {
	block := c.surface.FindByID(c.payload.ID)
	if block == nil {
		return
	}
	after := block
	if sib := block.NextSibling; markup.IsText(sib) && sib.Data == nbsp {
		after = sib
	}
	caret := Anchor{Node: after.Parent, Offset: markup.ChildIndex(after) + 1}
	_ = c.surface.SetSelection(Caret(caret))
	c.surface.Focus()
}

// Cancel ends a drag without a drop: the dimmed source is restored and the
// stash cleared. No content mutation occurs.
func (c *DragReorderController) Cancel() {
	c.undim()
	c.dragged = nil
	c.payload = DragPayload{}
	c.state = DragIdle
}

func (c *DragReorderController) undim() {
	if c.dragged != nil {
		markup.RemoveAttr(c.dragged, attrDragging)
	}
}

package editor

import (
	"testing"

	"golang.org/x/net/html"

	"github.com/marcus/quill/internal/markup"
)

// engineWithEmbed builds an engine whose content is one embedded block
// followed by a paragraph, returning the embed's id.
func engineWithEmbed(t *testing.T) (*testEngine, *DragReorderController, string) {
	t.Helper()
	b := NewBlockEmbedBuilder()
	block, err := b.Build("https://example.com/i.png", "a sunset", "")
	if err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, block.Markup+"<p>first</p><p>second</p>")
	ctrl := NewDragReorderController(e.surface, e.pipeline, nil)
	return e, ctrl, block.ID
}

func countByID(root *html.Node, id string) int {
	count := 0
	markup.Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && markup.Attr(n, "id") == id {
			count++
		}
		return true
	})
	return count
}

func TestPickupRequiresEmbedBlock(t *testing.T) {
	e, ctrl, _ := engineWithEmbed(t)
	tn := textNamed(t, e.surface, "first")

	if ctrl.Pickup(tn) {
		t.Error("Pickup succeeded on free text")
	}
	if ctrl.State() != DragIdle {
		t.Error("controller left idle state")
	}
}

func TestPickupFromDescendant(t *testing.T) {
	e, ctrl, id := engineWithEmbed(t)
	block := e.surface.FindByID(id)
	label := block.FirstChild // the embed-label span

	if !ctrl.Pickup(label) {
		t.Fatal("Pickup failed from embed descendant")
	}
	if ctrl.State() != Dragging {
		t.Error("controller not in dragging state")
	}
	if got := ctrl.Payload().ID; got != id {
		t.Errorf("payload id = %q, want %q", got, id)
	}
	if ctrl.Payload().Markup == "" {
		t.Error("payload markup empty")
	}
	if !markup.HasAttr(block, "data-dragging") {
		t.Error("source block not dimmed")
	}
	if ctrl.DragOver() != DropEffectMove {
		t.Error("drag affinity is not move")
	}
}

func TestPickupOutsideSurface(t *testing.T) {
	_, ctrl, _ := engineWithEmbed(t)
	stray := markup.NewElement("div")
	markup.SetAttr(stray, "class", "embed-block")

	if ctrl.Pickup(stray) {
		t.Error("Pickup succeeded on a node outside the surface")
	}
}

func TestDropRelocatesBlock(t *testing.T) {
	e, ctrl, id := engineWithEmbed(t)
	block := e.surface.FindByID(id)
	if !ctrl.Pickup(block) {
		t.Fatal("pickup failed")
	}
	before := e.pipeline.RemountToken()

	// Drop after the last paragraph.
	point := e.surface.EndOfContent()
	ctrl.Drop(&point)

	root := e.surface.Root()
	if got := countByID(root, id); got != 1 {
		t.Fatalf("block count = %d, want exactly 1:\n%s", got, e.surface.InnerHTML())
	}
	if e.pipeline.RemountToken() != before+1 {
		t.Errorf("drop did not take the hard path")
	}
	if ctrl.State() != DragIdle {
		t.Error("controller not idle after drop")
	}
	// The relocated block now follows both paragraphs.
	moved := e.surface.FindByID(id)
	if idx := markup.ChildIndex(moved); idx < 2 {
		t.Errorf("block index = %d, want after both paragraphs", idx)
	}
	if markup.HasAttr(moved, "data-dragging") {
		t.Error("relocated block still dimmed")
	}
}

func TestDropWithoutPointUsesSelection(t *testing.T) {
	e, ctrl, id := engineWithEmbed(t)
	if !ctrl.Pickup(e.surface.FindByID(id)) {
		t.Fatal("pickup failed")
	}
	tn := textNamed(t, e.surface, "second")
	if err := e.surface.SetSelection(Caret(Anchor{Node: tn, Offset: 0})); err != nil {
		t.Fatal(err)
	}

	ctrl.Drop(nil)

	if got := countByID(e.surface.Root(), id); got != 1 {
		t.Fatalf("block count = %d, want exactly 1", got)
	}
}

func TestDropMalformedPayloadCancels(t *testing.T) {
	// An embed without an id yields a malformed payload.
	e := newTestEngine(t, `<div class="embed-block" contenteditable="false">x</div><p>a</p>`)
	ctrl := NewDragReorderController(e.surface, e.pipeline, nil)

	var block *html.Node
	markup.Walk(e.surface.Root(), func(n *html.Node) bool {
		if n.Type == html.ElementNode && markup.HasClass(n, "embed-block") {
			block = n
			return false
		}
		return true
	})
	content := e.surface.InnerHTML()
	if !ctrl.Pickup(block) {
		t.Fatal("pickup failed")
	}
	before := e.pipeline.RemountToken()

	point := e.surface.EndOfContent()
	ctrl.Drop(&point)

	if got := e.surface.InnerHTML(); got != content {
		t.Errorf("content changed on malformed drop:\n got %q\nwant %q", got, content)
	}
	if e.pipeline.RemountToken() != before {
		t.Error("remount token changed on malformed drop")
	}
	if ctrl.State() != DragIdle {
		t.Error("controller not idle after cancelled drop")
	}
}

func TestCancelRestoresSource(t *testing.T) {
	e, ctrl, id := engineWithEmbed(t)
	content := e.surface.InnerHTML()
	if !ctrl.Pickup(e.surface.FindByID(id)) {
		t.Fatal("pickup failed")
	}

	ctrl.Cancel()

	if got := e.surface.InnerHTML(); got != content {
		t.Errorf("content changed by cancel:\n got %q\nwant %q", got, content)
	}
	if ctrl.State() != DragIdle {
		t.Error("controller not idle after cancel")
	}
	if ctrl.Payload() != (DragPayload{}) {
		t.Error("payload not cleared after cancel")
	}
}

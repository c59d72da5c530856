package tui

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"

	"github.com/marcus/quill/internal/editor"
	"github.com/marcus/quill/internal/markup"
	"github.com/marcus/quill/internal/styles"
)

// renderDocument lays out the surface content as styled terminal lines. The
// caret is painted as an inverse-video cell at its anchor.
func (m *Model) renderDocument(width int) string {
	if width < 10 {
		width = 10
	}
	caret := m.caretAnchor()
	root := m.surface.Root()

	var blocks []string
	idx := 0
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if caret.Node == root && caret.Offset == idx {
			blocks = append(blocks, styles.Caret.Render(" "))
		}
		blocks = append(blocks, m.renderBlock(c, caret, width))
		idx++
	}
	if caret.Node == root && caret.Offset >= idx {
		blocks = append(blocks, styles.Caret.Render(" "))
	}
	if len(blocks) == 0 {
		return styles.Muted.Render("Empty document. Start typing.")
	}
	return strings.Join(blocks, "\n")
}

// caretAnchor returns the selection start while the surface has focus, or a
// zero anchor that matches nothing.
func (m *Model) caretAnchor() editor.Anchor {
	if !m.surface.Focused() {
		return editor.Anchor{}
	}
	sel, ok := m.surface.Selection()
	if !ok {
		return editor.Anchor{}
	}
	return sel.Start
}

func (m *Model) renderBlock(n *html.Node, caret editor.Anchor, width int) string {
	if markup.IsText(n) {
		return wrapTo(renderInline(n, caret, styles.Body), width)
	}
	switch n.Data {
	case "h1":
		return wrapTo(renderInline(n, caret, styles.Heading1), width)
	case "h2":
		return wrapTo(renderInline(n, caret, styles.Heading2), width)
	case "h3":
		return wrapTo(renderInline(n, caret, styles.Heading3), width)
	case "blockquote":
		body := wrapTo(renderInline(n, caret, styles.Blockquote), width-2)
		return prefixLines(body, styles.ListBullet.Render("│ "))
	case "pre":
		return m.renderCodeBlock(n, caret, width)
	case "ul":
		return m.renderList(n, caret, width, false)
	case "ol":
		return m.renderList(n, caret, width, true)
	case "div":
		if markup.HasClass(n, "embed-block") {
			return m.renderEmbed(n, caret, width)
		}
	}
	return wrapTo(renderInline(n, caret, styles.Body), width)
}

func (m *Model) renderList(n *html.Node, caret editor.Anchor, width int, ordered bool) string {
	var lines []string
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !markup.IsElement(c, "li") {
			continue
		}
		i++
		bullet := styles.ListBullet.Render("• ")
		if ordered {
			bullet = styles.ListBullet.Render(fmt.Sprintf("%d. ", i))
		}
		body := wrapTo(renderInline(c, caret, styles.Body), width-4)
		lines = append(lines, bullet+strings.ReplaceAll(body, "\n", "\n   "))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// renderCodeBlock syntax-highlights the block's text. The caret cannot be
// painted inside highlighted output, so it degrades to a marker after the
// block while the caret is within it.
func (m *Model) renderCodeBlock(n *html.Node, caret editor.Anchor, width int) string {
	code := markup.TextContent(n)
	var buf strings.Builder
	if err := quick.Highlight(&buf, code, "", "terminal256", styles.CurrentSyntaxTheme); err != nil {
		buf.Reset()
		buf.WriteString(code)
	}
	out := strings.TrimRight(buf.String(), "\n")
	if caretWithin(n, caret) {
		out += styles.Caret.Render(" ")
	}
	return prefixLines(wrapTo(out, width-2), "  ")
}

func (m *Model) renderEmbed(n *html.Node, caret editor.Anchor, width int) string {
	desc := markup.Attr(n, "data-desc")
	if desc == "" {
		desc = "Image"
	}
	src := markup.Attr(n, "data-src")
	inner := width - 6
	if inner < 8 {
		inner = 8
	}
	if runewidth.StringWidth(src) > inner {
		src = ansi.Truncate(src, inner, "…")
	}
	card := styles.EmbedCard
	if markup.HasAttr(n, "data-dragging") {
		card = styles.EmbedCardDragging
	}
	body := styles.Title.Render(desc) + "\n" + styles.Muted.Render(src)
	out := card.Render(body)
	if caretWithin(n, caret) {
		out += styles.Caret.Render(" ")
	}
	return out
}

// renderInline flattens an inline subtree into one styled string, painting
// the caret inside text nodes it owns.
func renderInline(n *html.Node, caret editor.Anchor, base lipgloss.Style) string {
	if markup.IsText(n) {
		return renderText(n, caret, base)
	}

	style := base
	switch n.Data {
	case "b", "strong":
		style = style.Bold(true)
	case "i", "em":
		style = style.Italic(true)
	case "u":
		style = style.Underline(true)
	case "a":
		style = style.Foreground(styles.LinkColor).Underline(true)
	case "code":
		style = style.Foreground(styles.Accent)
	}

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(renderInline(c, caret, style))
	}
	if caret.Node == n {
		sb.WriteString(styles.Caret.Render(" "))
	}
	return sb.String()
}

func renderText(n *html.Node, caret editor.Anchor, style lipgloss.Style) string {
	if caret.Node != n {
		return style.Render(n.Data)
	}
	runes := []rune(n.Data)
	o := caret.Offset
	if o < 0 {
		o = 0
	}
	if o > len(runes) {
		o = len(runes)
	}
	if o == len(runes) {
		return style.Render(n.Data) + styles.Caret.Render(" ")
	}
	return style.Render(string(runes[:o])) +
		styles.Caret.Render(string(runes[o])) +
		style.Render(string(runes[o+1:]))
}

// caretWithin reports whether the caret anchor hangs somewhere under n.
func caretWithin(n *html.Node, caret editor.Anchor) bool {
	for a := caret.Node; a != nil; a = a.Parent {
		if a == n {
			return true
		}
	}
	return false
}

func wrapTo(s string, width int) string {
	if width < 4 {
		width = 4
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

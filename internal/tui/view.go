package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/marcus/quill/internal/editor"
	"github.com/marcus/quill/internal/styles"
	"github.com/marcus/quill/internal/ui"
)

const sidebarWidth = 32

// View renders the whole screen.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(bodyHeight),
		m.renderEditorPane(bodyHeight),
	)
	view := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	if m.showHelp {
		return ui.Overlay(view, m.helpView, m.width, m.height)
	}
	if m.dialog != dialogNone {
		return ui.Overlay(view, m.renderDialog(), m.width, m.height)
	}
	return view
}

func (m *Model) renderHeader() string {
	left := styles.Title.Render(" quill ")
	right := ""
	if m.editing {
		title := m.controller.Title()
		if m.controller.Dirty() {
			title += " •"
		}
		right = styles.Body.Render(title + " ")
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) renderSidebar(height int) string {
	panel := styles.PanelInactive
	if m.focus == paneList {
		panel = styles.PanelActive
	}

	title := "Documents"
	if m.showDeleted {
		title = "Trash"
	}
	lines := []string{styles.PanelHeader.Render(title)}
	if m.filter != "" {
		lines = append(lines, styles.Subtle.Render("filter: "+truncateTo(m.filter, sidebarWidth-12)))
	}

	docs := m.visibleDocs()
	if len(docs) == 0 {
		lines = append(lines, styles.Muted.Render("(empty)"))
	}
	visible := height - 4
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	for i := start; i < len(docs) && i < start+visible; i++ {
		name := docs[i].Title
		if name == "" {
			name = "Untitled"
		}
		name = truncateTo(name, sidebarWidth-6)
		item := styles.ListItemNormal
		if m.showDeleted {
			item = styles.ListItemDeleted
		}
		cursor := "  "
		if i == m.cursor && m.focus == paneList {
			cursor = styles.ListCursor.Render("> ")
			item = styles.ListItemSelected
		}
		lines = append(lines, cursor+item.Render(name))
	}

	return panel.Width(sidebarWidth - 2).Height(height - 2).Render(joinLines(lines))
}

func (m *Model) renderEditorPane(height int) string {
	width := m.width - sidebarWidth
	if width < 20 {
		width = 20
	}
	panel := styles.PanelInactive
	if m.focus == paneEditor {
		panel = styles.PanelActive
	}

	if !m.editing {
		hint := styles.Muted.Render("Select a document and press enter to edit.")
		return panel.Width(width - 2).Height(height - 2).Render(hint)
	}

	lines := []string{m.renderToolbar(), "", m.renderDocument(width - 4)}
	return panel.Width(width - 2).Height(height - 2).Render(joinLines(lines))
}

// renderToolbar shows the tracked format states for the current caret.
func (m *Model) renderToolbar() string {
	labels := []struct {
		f     editor.Format
		label string
	}{
		{editor.FormatBold, "B"},
		{editor.FormatItalic, "I"},
		{editor.FormatUnorderedList, "•"},
		{editor.FormatOrderedList, "1."},
		{editor.FormatH1, "H1"},
		{editor.FormatH2, "H2"},
		{editor.FormatH3, "H3"},
		{editor.FormatBlockquote, "❝"},
		{editor.FormatCodeBlock, "</>"},
	}
	active := m.tracker.Active()
	out := ""
	for _, l := range labels {
		if active[l.f] {
			out += styles.FormatActive.Render(l.label)
		} else {
			out += styles.FormatInactive.Render(l.label)
		}
	}
	if m.drag.State() == editor.Dragging {
		out += "  " + styles.ToastSuccess.Render("moving block")
	}
	return out
}

func (m *Model) renderFooter() string {
	if !m.cfg.UI.ShowFooter {
		if m.toast != "" {
			return m.renderToast()
		}
		return ""
	}

	hints := []string{
		hint(m.keys.Help), hint(m.keys.Quit),
	}
	if m.focus == paneList {
		hints = append(hints, hint(m.keys.Open), hint(m.keys.NewDoc), hint(m.keys.DeleteDoc), hint(m.keys.ToggleTrash), hint(m.keys.Filter))
		if m.showDeleted {
			hints = append(hints, hint(m.keys.RestoreDoc))
		}
	} else {
		hints = append(hints, hint(m.keys.Done), hint(m.keys.Bold), hint(m.keys.Italic), hint(m.keys.Assist), hint(m.keys.Image), hint(m.keys.Grab))
	}

	line := ""
	for _, h := range hints {
		line += h + " "
	}
	if m.toast != "" {
		line = m.renderToast() + " " + line
	}
	return styles.Footer.Width(m.width).Render(line)
}

func (m *Model) renderToast() string {
	if m.toastIsError {
		return styles.ToastError.Render(m.toast)
	}
	return styles.ToastSuccess.Render(m.toast)
}

func (m *Model) renderDialog() string {
	switch m.dialog {
	case dialogDelete:
		return m.renderDeleteDialog()
	case dialogEmbedInfo:
		return m.renderEmbedInfo()
	}

	titles := map[dialogKind]string{
		dialogNewDoc:    "New document",
		dialogEditTitle: "Rename document",
		dialogAssist:    "AI assist",
		dialogImage:     "Insert image",
		dialogLink:      "Insert link",
		dialogFilter:    "Filter documents",
	}
	body := styles.ModalTitle.Render(titles[m.dialog]) + "\n" + m.input.View()
	if m.dialogErr != "" {
		body += "\n" + styles.ToastError.Render(m.dialogErr)
	}
	body += "\n\n" + styles.Muted.Render("enter to confirm · esc to cancel")
	return styles.ModalBox.Render(body)
}

func (m *Model) renderDeleteDialog() string {
	doc := m.selectedDoc()
	name := "this document"
	if doc != nil && doc.Title != "" {
		name = fmt.Sprintf("%q", doc.Title)
	}
	del, cancel := styles.ButtonDangerFocused, styles.Button
	if m.confirmNo {
		del, cancel = styles.ButtonDanger, styles.ButtonFocused
	}
	body := styles.ModalTitle.Render("Move "+name+" to trash?") + "\n" +
		del.Render("Delete") + "  " + cancel.Render("Cancel")
	return styles.ModalBox.Render(body)
}

func (m *Model) renderEmbedInfo() string {
	info := m.embedInfo
	if info == nil {
		return ""
	}
	body := styles.ModalTitle.Render("Image details") + "\n" +
		styles.Body.Render(info.Description) + "\n" +
		styles.Link.Render(info.Source) + "\n" +
		styles.Subtle.Render(info.ID) + "\n\n" +
		styles.Muted.Render("any key to close")
	return styles.ModalBox.Render(body)
}

func hint(b key.Binding) string {
	h := b.Help()
	return styles.KeyHint.Render(h.Key) + " " + styles.Muted.Render(h.Desc)
}

func joinLines(lines []string) string {
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncateTo(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

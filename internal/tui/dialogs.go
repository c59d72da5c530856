package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/quill/internal/editor"
	"github.com/marcus/quill/internal/markup"
)

// handleDialogKey routes keys while a modal is open.
func (m *Model) handleDialogKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.dialog {
	case dialogEmbedInfo:
		m.closeDialog()
		return m, nil
	case dialogDelete:
		return m.handleDeleteDialogKey(k)
	}

	switch k.Type {
	case tea.KeyEsc:
		m.closeDialog()
		return m, nil
	case tea.KeyEnter:
		return m.submitDialog()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

func (m *Model) handleDeleteDialogKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case k.Type == tea.KeyEsc:
		m.closeDialog()
	case k.Type == tea.KeyLeft, k.Type == tea.KeyRight, k.Type == tea.KeyTab:
		m.confirmNo = !m.confirmNo
	case k.Type == tea.KeyEnter:
		doc := m.selectedDoc()
		confirmed := !m.confirmNo
		m.closeDialog()
		if confirmed && doc != nil {
			return m, m.deleteDocument(doc.ID)
		}
	case key.Matches(k, m.keys.DeleteDoc):
		// "d" again confirms, mirroring the list binding.
		doc := m.selectedDoc()
		m.closeDialog()
		if doc != nil {
			return m, m.deleteDocument(doc.ID)
		}
	}
	return m, nil
}

// submitDialog applies the input value for the active modal.
func (m *Model) submitDialog() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	switch m.dialog {
	case dialogNewDoc:
		if value == "" {
			value = "Untitled"
		}
		m.closeDialog()
		return m, m.createDocument(value)

	case dialogEditTitle:
		if value == "" {
			m.dialogErr = "Title cannot be empty"
			return m, nil
		}
		m.controller.SetTitle(value)
		m.closeDialog()
		return m, nil

	case dialogAssist:
		if value == "" {
			m.dialogErr = "Enter a prompt"
			return m, nil
		}
		m.closeDialog()
		m.assistBusy = true
		// A non-collapsed selection scopes the request to that text.
		contextText := ""
		if sel, ok := m.surface.Selection(); ok && !sel.Collapsed() {
			contextText = m.surface.TextInRange(sel)
		}
		if contextText == "" {
			contextText = markup.TextContent(m.surface.Root())
		}
		return m, m.runAssist(value, contextText)

	case dialogImage:
		if value == "" {
			m.dialogErr = "Enter an image path"
			return m, nil
		}
		m.closeDialog()
		return m, m.storeAsset(value)

	case dialogLink:
		if value == "" {
			m.dialogErr = "Enter a URL"
			return m, nil
		}
		m.closeDialog()
		m.applyFormat(editor.CmdCreateLink, value)
		return m, nil

	case dialogFilter:
		m.filter = value
		m.cursor = 0
		m.closeDialog()
		return m, nil
	}

	m.closeDialog()
	return m, nil
}

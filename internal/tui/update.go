package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/net/html"

	"github.com/marcus/quill/internal/editor"
	"github.com/marcus/quill/internal/markup"
	"github.com/marcus/quill/internal/msg"
	"github.com/marcus/quill/internal/state"
	"github.com/marcus/quill/internal/styles"
)

// Update routes messages to the focused pane or active dialog.
func (m *Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.input.Width = min(48, max(16, m.width-20))
		if m.showHelp {
			m.helpView = m.renderHelp()
		}
		return m, nil

	case DocumentsLoadedMsg:
		if message.Err != nil {
			return m, m.showToast("Load failed: "+message.Err.Error(), true)
		}
		first := m.docs == nil && m.deleted == nil
		m.docs = message.Docs
		m.deleted = message.Deleted
		if first {
			// Land the cursor on the document from the previous session.
			if last := state.GetLastDocument(); last != "" {
				for i, d := range m.visibleDocs() {
					if d.ID == last {
						m.cursor = i
						break
					}
				}
			}
		}
		m.clampCursor()
		return m, nil

	case DocumentCreatedMsg:
		if message.Err != nil {
			return m, m.showToast("Create failed: "+message.Err.Error(), true)
		}
		m.showDeleted = false
		m.cursor = 0
		m.openDocument(message.Doc)
		return m, m.loadDocuments()

	case DocumentSavedMsg:
		if message.ID == m.controller.DocumentID() {
			m.pipeline.MarkCommitted(message.Content)
		}
		return m, tea.Batch(m.loadDocuments(), m.showToast("Saved", false))

	case DocumentDeletedMsg:
		if message.Err != nil {
			return m, m.showToast("Delete failed: "+message.Err.Error(), true)
		}
		if m.editing && message.ID == m.controller.DocumentID() {
			m.invalidateAsync()
			m.controller.Close()
			m.editing = false
			m.focus = paneList
			m.surface.Blur()
		}
		return m, tea.Batch(m.loadDocuments(), m.showToast("Moved to trash", false))

	case DocumentRestoredMsg:
		if message.Err != nil {
			return m, m.showToast("Restore failed: "+message.Err.Error(), true)
		}
		return m, tea.Batch(m.loadDocuments(), m.showToast("Restored", false))

	case AssistResultMsg:
		m.assistBusy = false
		if message.Epoch != m.assistEpoch {
			return m, nil
		}
		if message.Err != nil {
			return m, m.showToast("Assist failed: "+message.Err.Error(), true)
		}
		// Assist responses always remount: the service may return any
		// markup, and the caret must land after the inserted fragment.
		m.pipeline.InsertRichContent(message.Text, true)
		m.controller.Touch()
		return m, m.showToast("Response inserted", false)

	case UploadResultMsg:
		if message.Epoch != m.uploadEpoch {
			return m, nil
		}
		if message.Err != nil {
			return m, m.showToast("Upload failed: "+message.Err.Error(), true)
		}
		block, err := m.builder.Build(message.URL, "", message.Description)
		if err != nil {
			return m, m.showToast("Embed failed: "+err.Error(), true)
		}
		m.pipeline.InsertRichContent(block.Markup, true)
		m.controller.Touch()
		return m, m.showToast("Image inserted", false)

	case MarkupCopiedMsg:
		if message.Err != nil {
			return m, m.showToast("Copy failed: "+message.Err.Error(), true)
		}
		return m, m.showToast("Markup copied", false)

	case ConfigReloadedMsg:
		m.cfg = message.Config
		styles.ApplyTheme(message.Config.UI.Theme.Name)
		return m, m.showToast("Configuration reloaded", false)

	case msg.ToastMsg:
		return m, m.showToast(message.Message, message.IsError)

	case toastExpiredMsg:
		if message.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(message)
	}
	return m, nil
}

func (m *Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(k, m.keys.Quit) {
		if m.editing {
			if err := m.controller.Flush(); err != nil {
				m.logger.Warn("flush on quit failed", "error", err)
			}
		}
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if key.Matches(k, m.keys.Help) {
		m.showHelp = true
		m.helpView = m.renderHelp()
		return m, nil
	}

	if m.dialog != dialogNone {
		return m.handleDialogKey(k)
	}

	if m.focus == paneEditor && m.editing {
		return m.handleEditorKey(k)
	}
	return m.handleListKey(k)
}

func (m *Model) handleListKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(k, m.keys.Down):
		if m.cursor < len(m.visibleDocs())-1 {
			m.cursor++
		}
	case key.Matches(k, m.keys.Open):
		doc := m.selectedDoc()
		if doc == nil {
			return m, nil
		}
		if m.showDeleted {
			return m, m.showToast("Restore the document to edit it", true)
		}
		m.openDocument(doc)
	case key.Matches(k, m.keys.NewDoc):
		m.openDialog(dialogNewDoc, "Untitled", "")
	case key.Matches(k, m.keys.DeleteDoc):
		if m.showDeleted {
			return m, nil
		}
		if m.selectedDoc() != nil {
			m.openDialog(dialogDelete, "", "")
		}
	case key.Matches(k, m.keys.RestoreDoc):
		if doc := m.selectedDoc(); m.showDeleted && doc != nil {
			return m, m.restoreDocument(doc.ID)
		}
	case key.Matches(k, m.keys.ToggleTrash):
		m.showDeleted = !m.showDeleted
		m.cursor = 0
		if err := state.SetShowTrash(m.showDeleted); err != nil {
			m.logger.Debug("persist trash view failed", "error", err)
		}
	case key.Matches(k, m.keys.Filter):
		m.openDialog(dialogFilter, "Title contains…", m.filter)
	case key.Matches(k, m.keys.Done):
		if m.filter != "" {
			m.filter = ""
			m.cursor = 0
		}
	case key.Matches(k, m.keys.FocusTab):
		if m.editing {
			m.focus = paneEditor
			m.surface.Focus()
		}
	}
	return m, nil
}

func (m *Model) handleEditorKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Drag mode swallows everything except movement, drop and cancel.
	if m.drag.State() == editor.Dragging {
		switch {
		case key.Matches(k, m.keys.Left):
			m.surface.MoveCaretBackward()
		case key.Matches(k, m.keys.Right):
			m.surface.MoveCaretForward()
		case key.Matches(k, m.keys.Drop):
			m.drag.Drop(nil)
			m.controller.ContentChanged()
		case key.Matches(k, m.keys.Done):
			m.drag.Cancel()
		}
		return m, nil
	}

	switch {
	case key.Matches(k, m.keys.Done):
		return m, m.closeEditor()
	case key.Matches(k, m.keys.FocusTab):
		m.focus = paneList
		m.surface.Blur()
	case key.Matches(k, m.keys.Left):
		m.surface.MoveCaretBackward()
		m.tracker.Recompute()
	case key.Matches(k, m.keys.Right):
		m.surface.MoveCaretForward()
		m.tracker.Recompute()

	case key.Matches(k, m.keys.Bold):
		m.applyFormat(editor.CmdBold, "")
	case key.Matches(k, m.keys.Italic):
		m.applyFormat(editor.CmdItalic, "")
	case key.Matches(k, m.keys.UnordList):
		m.applyFormat(editor.CmdUnorderedList, "")
	case key.Matches(k, m.keys.OrdList):
		m.applyFormat(editor.CmdOrderedList, "")
	case key.Matches(k, m.keys.Heading1):
		m.applyFormat(editor.CmdFormatBlock, "h1")
	case key.Matches(k, m.keys.Heading2):
		m.applyFormat(editor.CmdFormatBlock, "h2")
	case key.Matches(k, m.keys.Heading3):
		m.applyFormat(editor.CmdFormatBlock, "h3")
	case key.Matches(k, m.keys.Quote):
		m.applyFormat(editor.CmdFormatBlock, "blockquote")
	case key.Matches(k, m.keys.CodeBlock):
		m.applyFormat(editor.CmdFormatBlock, "pre")
	case key.Matches(k, m.keys.Paragraph):
		m.applyFormat(editor.CmdFormatBlock, "p")

	case key.Matches(k, m.keys.InsertLink):
		m.openDialog(dialogLink, "https://", "")
	case key.Matches(k, m.keys.Assist):
		if m.assist == nil || !m.cfg.Assist.Enabled {
			return m, m.showToast("AI assist is disabled", true)
		}
		if m.assistBusy {
			return m, m.showToast("Assist request already running", true)
		}
		m.ranges.Save()
		m.openDialog(dialogAssist, "Ask for a change or addition", "")
	case key.Matches(k, m.keys.Image):
		m.ranges.Save()
		m.openDialog(dialogImage, "/path/to/image.png", "")
	case key.Matches(k, m.keys.CopyDoc):
		return m, m.copyMarkup(m.pipeline.State().PendingContent)
	case key.Matches(k, m.keys.EditTitle):
		m.openDialog(dialogEditTitle, "Document title", m.controller.Title())

	case key.Matches(k, m.keys.Grab):
		return m.grabEmbed()
	case key.Matches(k, m.keys.EmbedInfo):
		target := m.embedAtCaret()
		if target == nil {
			return m, m.showToast("No image block at the caret", true)
		}
		m.embedInfo = &embedDetails{
			ID:          markup.Attr(target, "id"),
			Source:      markup.Attr(target, "data-src"),
			Description: markup.Attr(target, "data-desc"),
		}
		m.dialog = dialogEmbedInfo

	default:
		return m.handleTypingKey(k)
	}
	return m, nil
}

// handleTypingKey feeds plain editing keys into the surface.
func (m *Model) handleTypingKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyRunes:
		m.surface.InsertText(string(k.Runes))
	case tea.KeySpace:
		m.surface.InsertText(" ")
	case tea.KeyEnter:
		m.surface.InsertParagraphBreak()
	case tea.KeyBackspace:
		m.surface.DeleteBack()
	default:
		return m, nil
	}
	m.controller.ContentChanged()
	return m, nil
}

// grabEmbed starts a keyboard drag of the embed block nearest the caret. On
// the embed details binding we also surface the block's metadata.
func (m *Model) grabEmbed() (tea.Model, tea.Cmd) {
	target := m.embedAtCaret()
	if target == nil {
		return m, m.showToast("No image block at the caret", true)
	}
	if !m.drag.Pickup(target) {
		return m, m.showToast("Cannot move that block", true)
	}
	return m, m.showToast("Move the caret, then drop with "+m.keys.Drop.Help().Key, false)
}

// embedAtCaret returns the embed block the caret touches: an ancestor of the
// caret node, or the sibling immediately before or after an element caret.
func (m *Model) embedAtCaret() *html.Node {
	sel, ok := m.surface.Selection()
	if !ok {
		return nil
	}
	isEmbed := func(n *html.Node) bool { return markup.HasClass(n, "embed-block") }
	if found := markup.Closest(sel.Start.Node, m.surface.Root(), isEmbed); found != nil {
		return found
	}
	if !markup.IsText(sel.Start.Node) {
		if n := markup.ChildAt(sel.Start.Node, sel.Start.Offset); n != nil && isEmbed(n) {
			return n
		}
		if n := markup.ChildAt(sel.Start.Node, sel.Start.Offset-1); n != nil && isEmbed(n) {
			return n
		}
	}
	return nil
}

// applyFormat runs a formatting command through the pipeline and marks the
// document dirty.
func (m *Model) applyFormat(cmd editor.Command, value string) {
	m.pipeline.ApplyFormat(cmd, value)
	m.controller.Touch()
}

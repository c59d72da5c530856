// Package tui is the terminal front end: a document list beside an editable
// document surface, with modal dialogs for the operations that need input.
package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/quill/internal/assist"
	"github.com/marcus/quill/internal/config"
	"github.com/marcus/quill/internal/document"
	"github.com/marcus/quill/internal/editor"
	"github.com/marcus/quill/internal/state"
	"github.com/marcus/quill/internal/upload"
)

// pane identifies which side of the split holds focus.
type pane int

const (
	paneList pane = iota
	paneEditor
)

// dialogKind identifies the active modal, if any.
type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogNewDoc
	dialogEditTitle
	dialogAssist
	dialogImage
	dialogLink
	dialogDelete
	dialogEmbedInfo
	dialogFilter
)

// embedDetails is the read-only popup content for an embedded block.
type embedDetails struct {
	ID          string
	Source      string
	Description string
}

// Model is the bubbletea model for the whole application.
type Model struct {
	cfg     *config.Config
	store   *document.Store
	assist  *assist.Client
	uploads *upload.LocalStore
	logger  *slog.Logger

	// Send delivers messages from outside the Update loop (autosave
	// confirmations, config reloads). Set by main once the program exists.
	Send func(tea.Msg)

	keys   KeyMap
	width  int
	height int

	focus       pane
	docs        []document.Document
	deleted     []document.Document
	showDeleted bool
	filter      string
	cursor      int

	surface    *editor.Surface
	ranges     *editor.RangeStore
	tracker    *editor.FormatStateTracker
	pipeline   *editor.ContentMutationPipeline
	builder    *editor.BlockEmbedBuilder
	drag       *editor.DragReorderController
	controller *editor.Controller

	editing bool

	dialog    dialogKind
	input     textinput.Model
	dialogErr string
	confirmNo bool
	embedInfo *embedDetails

	assistEpoch int
	uploadEpoch int
	assistBusy  bool

	toast        string
	toastIsError bool
	toastID      int

	showHelp bool
	helpView string
}

// NewModel wires the editing engine to the stores and returns a ready model.
// The autosave path writes through the document store and then notifies the
// UI via Send, which main injects after constructing the program.
func NewModel(cfg *config.Config, store *document.Store, assistClient *assist.Client, uploads *upload.LocalStore, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Model{
		cfg:         cfg,
		store:       store,
		assist:      assistClient,
		uploads:     uploads,
		logger:      logger,
		keys:        DefaultKeyMap(),
		showDeleted: state.GetShowTrash(),
	}

	m.surface = editor.NewSurface("")
	m.ranges = editor.NewRangeStore(m.surface)
	m.tracker = editor.NewFormatStateTracker(m.surface)
	m.pipeline = editor.NewContentMutationPipeline(m.surface, m.ranges, m.tracker, logger)
	m.builder = editor.NewBlockEmbedBuilder()
	m.drag = editor.NewDragReorderController(m.surface, m.pipeline, logger)

	m.controller = editor.NewController(m.pipeline,
		func(id, title, content string) error {
			if err := store.Update(id, title, content); err != nil {
				return err
			}
			if m.Send != nil {
				m.Send(DocumentSavedMsg{ID: id, Content: content})
			}
			return nil
		},
		editor.WithAutosaveQuiet(cfg.Editor.AutosaveQuiet),
		editor.WithLogger(logger),
	)

	ti := textinput.New()
	ti.CharLimit = 512
	m.input = ti

	return m
}

// Init loads the document list.
func (m *Model) Init() tea.Cmd {
	return m.loadDocuments()
}

// Controller exposes the editing controller so main can flush pending work
// on shutdown.
func (m *Model) Controller() *editor.Controller {
	return m.controller
}

// visibleDocs returns the list for the current trash toggle, narrowed by the
// sidebar filter when one is set.
func (m *Model) visibleDocs() []document.Document {
	docs := m.docs
	if m.showDeleted {
		docs = m.deleted
	}
	if m.filter == "" {
		return docs
	}
	needle := strings.ToLower(m.filter)
	out := make([]document.Document, 0, len(docs))
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.Title), needle) {
			out = append(out, d)
		}
	}
	return out
}

// selectedDoc returns the document under the cursor, or nil.
func (m *Model) selectedDoc() *document.Document {
	docs := m.visibleDocs()
	if m.cursor < 0 || m.cursor >= len(docs) {
		return nil
	}
	return &docs[m.cursor]
}

// clampCursor keeps the cursor inside the visible list.
func (m *Model) clampCursor() {
	n := len(m.visibleDocs())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// invalidateAsync orphans any in-flight assist or upload request so its result
// cannot land in a document it was not dispatched for.
func (m *Model) invalidateAsync() {
	m.assistEpoch++
	m.uploadEpoch++
	m.assistBusy = false
}

// openDocument loads a document into the editing engine and focuses the
// editor pane.
func (m *Model) openDocument(doc *document.Document) {
	m.invalidateAsync()
	m.controller.Load(editor.DocumentRef{ID: doc.ID, Title: doc.Title, Content: doc.Content})
	if err := state.SetLastDocument(doc.ID); err != nil {
		m.logger.Debug("persist last document failed", "error", err)
	}
	m.editing = true
	m.focus = paneEditor
	m.surface.Focus()
	m.ranges.FocusAtEnd()
	m.tracker.Recompute()
}

// closeEditor flushes pending changes and returns focus to the list.
func (m *Model) closeEditor() tea.Cmd {
	m.invalidateAsync()
	var cmds []tea.Cmd
	if err := m.controller.Flush(); err != nil {
		m.logger.Warn("flush on close failed", "error", err)
		cmds = append(cmds, m.showToast("Save failed: "+err.Error(), true))
	}
	m.editing = false
	m.focus = paneList
	m.surface.Blur()
	cmds = append(cmds, m.loadDocuments())
	return tea.Batch(cmds...)
}

// openDialog activates a modal with the given input placeholder and value.
func (m *Model) openDialog(kind dialogKind, placeholder, value string) {
	m.dialog = kind
	m.dialogErr = ""
	m.confirmNo = false
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

// closeDialog deactivates the modal.
func (m *Model) closeDialog() {
	m.dialog = dialogNone
	m.dialogErr = ""
	m.embedInfo = nil
	m.input.Blur()
	m.input.SetValue("")
}

package tui

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/quill/internal/config"
	"github.com/marcus/quill/internal/document"
	"github.com/marcus/quill/internal/state"
	"github.com/marcus/quill/internal/upload"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	if err := state.InitWithDir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	store, err := document.Open(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	toastDuration = time.Millisecond // keep drained tick commands fast

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewModel(config.Default(), store, nil, upload.NewLocalStore(t.TempDir(), 0), logger)
	m.width, m.height = 100, 30
	return m
}

// drain runs a command synchronously and feeds its message back into Update.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				drain(t, m, c)
			}
			return
		}
		if _, ok := msg.(toastExpiredMsg); ok {
			return // expiry ticks would block the test for their duration
		}
		_, cmd = m.Update(msg)
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAssistResultRemountsOnce(t *testing.T) {
	m := newTestModel(t)
	doc, err := m.store.Create("draft", "<p>draft</p>")
	if err != nil {
		t.Fatal(err)
	}
	m.openDocument(doc)
	before := m.pipeline.RemountToken()

	// Plain text too: assist insertions always take the hard path.
	_, _ = m.Update(AssistResultMsg{Epoch: m.assistEpoch, Text: "final draft"})

	if got := m.pipeline.RemountToken(); got != before+1 {
		t.Errorf("RemountToken() = %d after assist insertion, want %d", got, before+1)
	}
	if !strings.Contains(m.pipeline.State().PendingContent, "final draft") {
		t.Errorf("PendingContent = %q, want the response present", m.pipeline.State().PendingContent)
	}
}

func TestDocumentsLoadedPositionsCursorOnLastDocument(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.store.Create("first", ""); err != nil {
		t.Fatal(err)
	}
	second, err := m.store.Create("second", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := state.SetLastDocument(second.ID); err != nil {
		t.Fatal(err)
	}

	drain(t, m, m.loadDocuments())

	if len(m.docs) != 2 {
		t.Fatalf("loaded %d docs, want 2", len(m.docs))
	}
	if got := m.visibleDocs()[m.cursor].ID; got != second.ID {
		t.Errorf("cursor on %q, want last open document %q", got, second.ID)
	}
}

func TestNewDocumentDialogCreatesAndOpens(t *testing.T) {
	m := newTestModel(t)
	drain(t, m, m.loadDocuments())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.dialog != dialogNewDoc {
		t.Fatalf("dialog = %v, want new-document dialog", m.dialog)
	}

	_, _ = m.Update(keyMsg("Ideas"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, m, cmd)

	if !m.editing {
		t.Fatal("expected editor to open after creation")
	}
	if got := m.controller.Title(); got != "Ideas" {
		t.Errorf("Title() = %q, want Ideas", got)
	}
	if m.dialog != dialogNone {
		t.Error("dialog still open after submit")
	}
}

func TestTypingMarksDocumentDirty(t *testing.T) {
	m := newTestModel(t)
	doc, err := m.store.Create("notes", "<p>hi</p>")
	if err != nil {
		t.Fatal(err)
	}
	drain(t, m, m.loadDocuments())
	m.openDocument(doc)
	if m.controller.Dirty() {
		t.Fatal("freshly opened document reported dirty")
	}

	_, _ = m.Update(keyMsg("x"))

	if !m.controller.Dirty() {
		t.Error("typing did not mark the document dirty")
	}
	if got := m.pipeline.State().PendingContent; !strings.Contains(got, "x") {
		t.Errorf("PendingContent = %q, want the typed rune present", got)
	}
}

func TestDeleteDialogConfirmMovesToTrash(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.store.Create("doomed", ""); err != nil {
		t.Fatal(err)
	}
	drain(t, m, m.loadDocuments())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	if m.dialog != dialogDelete {
		t.Fatalf("dialog = %v, want delete confirmation", m.dialog)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, m, cmd)

	if len(m.docs) != 0 {
		t.Errorf("%d live docs after delete, want 0", len(m.docs))
	}
	if len(m.deleted) != 1 {
		t.Errorf("%d trashed docs after delete, want 1", len(m.deleted))
	}
}

func TestDeleteDialogCancelKeepsDocument(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.store.Create("kept", ""); err != nil {
		t.Fatal(err)
	}
	drain(t, m, m.loadDocuments())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight}) // move to Cancel
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, m, cmd)

	if len(m.docs) != 1 {
		t.Errorf("%d live docs after cancel, want 1", len(m.docs))
	}
}

func TestUploadResultInsertsEmbedBlock(t *testing.T) {
	m := newTestModel(t)
	doc, err := m.store.Create("pics", "<p>intro</p>")
	if err != nil {
		t.Fatal(err)
	}
	m.openDocument(doc)

	_, _ = m.Update(UploadResultMsg{
		Epoch:       m.uploadEpoch,
		URL:         "file:///assets/photo.png",
		Description: "photo.png",
	})

	content := m.pipeline.State().PendingContent
	if !strings.Contains(content, "embed-block") {
		t.Errorf("PendingContent = %q, want an embed block", content)
	}
	if !strings.Contains(content, "file:///assets/photo.png") {
		t.Error("embed block missing source URL")
	}
	if !m.controller.Dirty() {
		t.Error("embed insertion did not mark the document dirty")
	}
}

func TestUploadResultStaleEpochIgnored(t *testing.T) {
	m := newTestModel(t)
	doc, err := m.store.Create("pics", "<p>intro</p>")
	if err != nil {
		t.Fatal(err)
	}
	m.openDocument(doc)
	m.uploadEpoch++

	_, _ = m.Update(UploadResultMsg{Epoch: m.uploadEpoch - 1, URL: "file:///late.png"})

	if strings.Contains(m.pipeline.State().PendingContent, "late.png") {
		t.Error("stale upload result was inserted")
	}
}

func TestAssistResultStaleEpochIgnored(t *testing.T) {
	m := newTestModel(t)
	doc, err := m.store.Create("draft", "<p>keep</p>")
	if err != nil {
		t.Fatal(err)
	}
	m.openDocument(doc)
	m.assistEpoch++

	_, _ = m.Update(AssistResultMsg{Epoch: m.assistEpoch - 1, Text: "<p>stale</p>"})

	if strings.Contains(m.pipeline.State().PendingContent, "stale") {
		t.Error("stale assist response was inserted")
	}
}

func TestAssistResultInsertsResponse(t *testing.T) {
	m := newTestModel(t)
	doc, err := m.store.Create("draft", "<p>keep</p>")
	if err != nil {
		t.Fatal(err)
	}
	m.openDocument(doc)

	_, _ = m.Update(AssistResultMsg{Epoch: m.assistEpoch, Text: "<p>generated</p>"})

	if !strings.Contains(m.pipeline.State().PendingContent, "generated") {
		t.Errorf("PendingContent = %q, want assist response inserted", m.pipeline.State().PendingContent)
	}
}

func TestToastExpiry(t *testing.T) {
	m := newTestModel(t)
	_ = m.showToast("hello", false)
	if m.toast != "hello" {
		t.Fatalf("toast = %q, want hello", m.toast)
	}

	// A stale expiry (from an earlier toast) must not clear a newer one.
	_, _ = m.Update(toastExpiredMsg{id: m.toastID - 1})
	if m.toast != "hello" {
		t.Error("stale expiry cleared active toast")
	}

	_, _ = m.Update(toastExpiredMsg{id: m.toastID})
	if m.toast != "" {
		t.Error("toast not cleared by matching expiry")
	}
}

func TestTrashToggleShowsDeleted(t *testing.T) {
	m := newTestModel(t)
	doc, err := m.store.Create("gone", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.store.Delete(doc.ID); err != nil {
		t.Fatal(err)
	}
	drain(t, m, m.loadDocuments())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if !m.showDeleted {
		t.Fatal("trash view not active after toggle")
	}
	if len(m.visibleDocs()) != 1 {
		t.Errorf("%d docs visible in trash, want 1", len(m.visibleDocs()))
	}
	if !state.GetShowTrash() {
		t.Error("trash preference not persisted")
	}
}

func TestSidebarFilterNarrowsList(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.store.Create("shopping list", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := m.store.Create("meeting notes", ""); err != nil {
		t.Fatal(err)
	}
	drain(t, m, m.loadDocuments())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if m.dialog != dialogFilter {
		t.Fatalf("dialog = %v, want filter dialog", m.dialog)
	}
	_, _ = m.Update(keyMsg("Notes"))
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	docs := m.visibleDocs()
	if len(docs) != 1 || docs[0].Title != "meeting notes" {
		t.Fatalf("filtered docs = %v, want just the matching title", docs)
	}

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.visibleDocs()) != 2 {
		t.Error("esc did not clear the filter")
	}
}

func TestAssistResultAfterSwitchingDocumentsIgnored(t *testing.T) {
	m := newTestModel(t)
	docA, err := m.store.Create("alpha", "<p>doc-a</p>")
	if err != nil {
		t.Fatal(err)
	}
	docB, err := m.store.Create("beta", "<p>doc-b</p>")
	if err != nil {
		t.Fatal(err)
	}

	m.openDocument(docA)
	inFlight := m.assistEpoch // snapshot taken at dispatch time

	drain(t, m, m.closeEditor())
	m.openDocument(docB)

	_, _ = m.Update(AssistResultMsg{Epoch: inFlight, Text: "stale-from-alpha"})

	if strings.Contains(m.pipeline.State().PendingContent, "stale-from-alpha") {
		t.Error("response dispatched for another document was inserted")
	}
}

func TestUploadResultAfterSwitchingDocumentsIgnored(t *testing.T) {
	m := newTestModel(t)
	docA, err := m.store.Create("alpha", "<p>doc-a</p>")
	if err != nil {
		t.Fatal(err)
	}
	docB, err := m.store.Create("beta", "<p>doc-b</p>")
	if err != nil {
		t.Fatal(err)
	}

	m.openDocument(docA)
	inFlight := m.uploadEpoch

	drain(t, m, m.closeEditor())
	m.openDocument(docB)

	_, _ = m.Update(UploadResultMsg{Epoch: inFlight, URL: "file:///late.png"})

	if strings.Contains(m.pipeline.State().PendingContent, "late.png") {
		t.Error("upload dispatched for another document was inserted")
	}
}

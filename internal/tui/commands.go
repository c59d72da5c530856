package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/quill/internal/assist"
)

var toastDuration = 3 * time.Second

// loadDocuments fetches both the live and deleted lists.
func (m *Model) loadDocuments() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		docs, err := store.FetchAll()
		if err != nil {
			return DocumentsLoadedMsg{Err: err}
		}
		deleted, err := store.FetchDeleted()
		if err != nil {
			return DocumentsLoadedMsg{Err: err}
		}
		return DocumentsLoadedMsg{Docs: docs, Deleted: deleted}
	}
}

func (m *Model) createDocument(title string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		doc, err := store.Create(title, "")
		return DocumentCreatedMsg{Doc: doc, Err: err}
	}
}

func (m *Model) deleteDocument(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return DocumentDeletedMsg{ID: id, Err: store.Delete(id)}
	}
}

func (m *Model) restoreDocument(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return DocumentRestoredMsg{ID: id, Err: store.Restore(id)}
	}
}

// runAssist sends the prompt and current document text to the AI service.
// The epoch taken at dispatch time lets Update drop responses that arrive
// after the user switched documents.
func (m *Model) runAssist(prompt, contextText string) tea.Cmd {
	client := m.assist
	epoch := m.assistEpoch
	timeout := m.cfg.Assist.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := client.Generate(ctx, assist.Request{Prompt: prompt, ContextText: contextText})
		if err != nil {
			return AssistResultMsg{Epoch: epoch, Err: err}
		}
		return AssistResultMsg{Epoch: epoch, Text: resp.Text}
	}
}

// storeAsset validates and copies the image, returning its embed URL.
func (m *Model) storeAsset(path string) tea.Cmd {
	uploads := m.uploads
	epoch := m.uploadEpoch
	return func() tea.Msg {
		res, err := uploads.Store(path)
		if err != nil {
			return UploadResultMsg{Epoch: epoch, Err: err}
		}
		return UploadResultMsg{Epoch: epoch, URL: res.URL, Description: res.Description}
	}
}

// copyMarkup puts the current document markup on the system clipboard.
func (m *Model) copyMarkup(content string) tea.Cmd {
	return func() tea.Msg {
		return MarkupCopiedMsg{Err: clipboard.WriteAll(content)}
	}
}

// showToast displays a transient status line and schedules its expiry.
func (m *Model) showToast(message string, isError bool) tea.Cmd {
	m.toastID++
	m.toast = message
	m.toastIsError = isError
	id := m.toastID
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

package tui

import (
	"github.com/marcus/quill/internal/config"
	"github.com/marcus/quill/internal/document"
)

// DocumentsLoadedMsg delivers the document lists from the store.
type DocumentsLoadedMsg struct {
	Docs    []document.Document
	Deleted []document.Document
	Err     error
}

// DocumentCreatedMsg reports a freshly created document.
type DocumentCreatedMsg struct {
	Doc *document.Document
	Err error
}

// DocumentSavedMsg is sent from the autosave goroutine after a successful
// write, so the UI can confirm the commit and refresh list ordering.
type DocumentSavedMsg struct {
	ID      string
	Content string
}

// DocumentDeletedMsg reports a soft delete.
type DocumentDeletedMsg struct {
	ID  string
	Err error
}

// DocumentRestoredMsg reports an undelete.
type DocumentRestoredMsg struct {
	ID  string
	Err error
}

// AssistResultMsg carries the AI response for the prompt the user submitted.
// Epoch guards against a stale response landing after the user moved on to a
// different document.
type AssistResultMsg struct {
	Epoch int
	Text  string
	Err   error
}

// UploadResultMsg carries the stored asset for an image insertion.
type UploadResultMsg struct {
	Epoch       int
	URL         string
	Description string
	Err         error
}

// MarkupCopiedMsg reports the result of copying document markup to the
// system clipboard.
type MarkupCopiedMsg struct {
	Err error
}

// ConfigReloadedMsg delivers a fresh configuration picked up by the file
// watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// toastExpiredMsg clears the active toast once its duration elapses.
type toastExpiredMsg struct {
	id int
}

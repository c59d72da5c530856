// Package document persists documents in SQLite. Content is stored as the
// editor's serialized markup string; the store never interprets it.
package document

import "time"

// Document is a single persisted document.
type Document struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the document is soft-deleted.
func (d *Document) Deleted() bool {
	return d.DeletedAt != nil
}

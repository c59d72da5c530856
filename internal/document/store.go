package document

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no live document has the requested id.
var ErrNotFound = errors.New("document: not found")

// Store handles SQLite operations for documents.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the document database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// DefaultDBPath returns the database path under the user config directory.
func DefaultDBPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "quill", "documents.db")
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    deleted_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_documents_deleted ON documents(deleted_at);
`
	_, err := s.db.Exec(schema)
	return err
}

// generateID creates a new document ID with "doc-" prefix and 8 hex chars.
func generateID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "doc-" + hex.EncodeToString(b), nil
}

// Create inserts a new document and returns it.
func (s *Store) Create(title, content string) (*Document, error) {
	id, err := generateID()
	if err != nil {
		return nil, fmt.Errorf("generate ID: %w", err)
	}

	now := time.Now().UTC()
	doc := &Document{
		ID:        id,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.Exec(`
		INSERT INTO documents (id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, doc.ID, doc.Title, doc.Content,
		doc.CreatedAt.Format(time.RFC3339),
		doc.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

// Update overwrites a live document's title and content and stamps
// updated_at, so saved changes surface at the top of recency-ordered lists.
func (s *Store) Update(id, title, content string) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE documents SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, title, content, now.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete performs a soft delete.
func (s *Store) Delete(id string) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE documents SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, now.Format(time.RFC3339), now.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

// Restore undoes a soft delete by clearing deleted_at.
func (s *Store) Restore(id string) error {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE documents SET deleted_at = NULL, updated_at = ?
		WHERE id = ? AND deleted_at IS NOT NULL
	`, now.Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("restore document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("restore document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("restore %s: %w", id, ErrNotFound)
	}
	return nil
}

// Get retrieves a document by ID, soft-deleted included so callers can offer
// restore.
func (s *Store) Get(id string) (*Document, error) {
	row := s.db.QueryRow(`
		SELECT id, title, content, created_at, updated_at, deleted_at
		FROM documents WHERE id = ?
	`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	return doc, nil
}

// FetchAll retrieves all live documents, most recently updated first.
func (s *Store) FetchAll() ([]Document, error) {
	return s.queryDocuments(`
		SELECT id, title, content, created_at, updated_at, deleted_at
		FROM documents
		WHERE deleted_at IS NULL
		ORDER BY updated_at DESC`)
}

// FetchDeleted retrieves soft-deleted documents, most recently deleted first.
func (s *Store) FetchDeleted() ([]Document, error) {
	return s.queryDocuments(`
		SELECT id, title, content, created_at, updated_at, deleted_at
		FROM documents
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC`)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var doc Document
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}
	doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if deletedAt.Valid {
		t, _ := time.Parse(time.RFC3339, deletedAt.String)
		doc.DeletedAt = &t
	}
	return &doc, nil
}

func (s *Store) queryDocuments(query string) ([]Document, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

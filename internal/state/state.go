package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// State holds persistent user preferences.
type State struct {
	// LastDocumentID is the document that was open when the app exited.
	LastDocumentID string `json:"lastDocumentId,omitempty"`

	// ShowTrash remembers whether the trash view was active.
	ShowTrash bool `json:"showTrash,omitempty"`
}

var (
	current *State
	mu      sync.RWMutex
	path    string
)

// Init loads state from the default location.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return InitWithDir(filepath.Join(home, ".config", "quill"))
}

// InitWithDir loads state from a specified directory.
// This is primarily for testing to avoid reading real user state.
func InitWithDir(dir string) error {
	path = filepath.Join(dir, "state.json")
	return Load()
}

// Load reads state from disk.
func Load() error {
	mu.Lock()
	defer mu.Unlock()

	current = &State{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no state file yet, use defaults
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, current)
}

// Save writes state to disk.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetLastDocument returns the last open document id, or "".
func GetLastDocument() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return ""
	}
	return current.LastDocumentID
}

// SetLastDocument saves the last open document id.
func SetLastDocument(id string) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.LastDocumentID = id
	mu.Unlock()
	return Save()
}

// GetShowTrash returns whether the trash view was active.
func GetShowTrash() bool {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return false
	}
	return current.ShowTrash
}

// SetShowTrash saves the trash view preference.
func SetShowTrash(show bool) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.ShowTrash = show
	mu.Unlock()
	return Save()
}

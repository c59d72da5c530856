package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Editor.AutosaveQuiet != time.Second {
		t.Errorf("got autosave quiet %v, want 1s", cfg.Editor.AutosaveQuiet)
	}
	if !cfg.Assist.Enabled {
		t.Error("assist should be enabled by default")
	}
	if cfg.Upload.MaxAssetBytes != 5*1024*1024 {
		t.Errorf("got max asset bytes %d, want 5MB", cfg.Upload.MaxAssetBytes)
	}
	if cfg.UI.Theme.Name != "default" {
		t.Errorf("got theme %q, want 'default'", cfg.UI.Theme.Name)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.json")
	if err != nil {
		t.Errorf("should not error on missing file: %v", err)
	}
	if cfg == nil {
		t.Error("should return default config")
	}
}

func TestLoadFrom_ValidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := []byte(`{
		"editor": {
			"autosaveQuiet": "2s"
		},
		"assist": {
			"enabled": false,
			"model": "mistral"
		},
		"ui": {
			"showFooter": false
		}
	}`)

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Editor.AutosaveQuiet != 2*time.Second {
		t.Errorf("got autosave quiet %v, want 2s", cfg.Editor.AutosaveQuiet)
	}
	if cfg.Assist.Enabled {
		t.Error("assist should be disabled")
	}
	if cfg.Assist.Model != "mistral" {
		t.Errorf("got model %q, want 'mistral'", cfg.Assist.Model)
	}
	if cfg.UI.ShowFooter {
		t.Error("showFooter should be false")
	}
	// Default values should still be present
	if cfg.Assist.Endpoint == "" {
		t.Error("endpoint should keep its default")
	}
	if cfg.Upload.MaxAssetBytes != 5*1024*1024 {
		t.Error("max asset bytes should keep its default")
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte(`{invalid`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("should error on invalid JSON")
	}
}

func TestLoadFrom_ExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := []byte(`{
		"storage": {"dbPath": "~/quill/db.sqlite"},
		"upload": {"assetsDir": "~/quill/assets"}
	}`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "quill/db.sqlite"); cfg.Storage.DBPath != want {
		t.Errorf("got dbPath %q, want %q", cfg.Storage.DBPath, want)
	}
	if want := filepath.Join(home, "quill/assets"); cfg.Upload.AssetsDir != want {
		t.Errorf("got assetsDir %q, want %q", cfg.Upload.AssetsDir, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input  string
		expect string
	}{
		{"~/.config/quill", filepath.Join(home, ".config/quill")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tc := range tests {
		got := ExpandPath(tc.input)
		if got != tc.expect {
			t.Errorf("ExpandPath(%q) = %q, want %q", tc.input, got, tc.expect)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Editor.AutosaveQuiet = -1
	cfg.Upload.MaxAssetBytes = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}

	// Out-of-range values should be corrected
	if cfg.Editor.AutosaveQuiet != time.Second {
		t.Errorf("got %v, want 1s after validation", cfg.Editor.AutosaveQuiet)
	}
	if cfg.Upload.MaxAssetBytes != 5*1024*1024 {
		t.Errorf("got %d, want 5MB after validation", cfg.Upload.MaxAssetBytes)
	}
}

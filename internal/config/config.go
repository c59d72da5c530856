package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Editor  EditorConfig  `json:"editor"`
	Assist  AssistConfig  `json:"assist"`
	Upload  UploadConfig  `json:"upload"`
	UI      UIConfig      `json:"ui"`
}

// StorageConfig configures the document database.
type StorageConfig struct {
	DBPath string `json:"dbPath"` // supports ~ expansion
}

// EditorConfig configures editing behavior.
type EditorConfig struct {
	// AutosaveQuiet is how long after the last change an autosave fires.
	AutosaveQuiet time.Duration `json:"autosaveQuiet"`
}

// AssistConfig configures the AI-assist collaborator.
type AssistConfig struct {
	Enabled  bool          `json:"enabled"`
	Endpoint string        `json:"endpoint"`
	Model    string        `json:"model"`
	Timeout  time.Duration `json:"timeout"`
}

// UploadConfig configures image uploads.
type UploadConfig struct {
	AssetsDir     string `json:"assetsDir"` // supports ~ expansion
	MaxAssetBytes int64  `json:"maxAssetBytes"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowFooter bool        `json:"showFooter"`
	Theme      ThemeConfig `json:"theme"`
}

// ThemeConfig configures the color theme.
type ThemeConfig struct {
	Name string `json:"name"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath: "~/.config/quill/documents.db",
		},
		Editor: EditorConfig{
			AutosaveQuiet: time.Second,
		},
		Assist: AssistConfig{
			Enabled:  true,
			Endpoint: "http://localhost:11434/api/generate",
			Model:    "llama3.2",
			Timeout:  60 * time.Second,
		},
		Upload: UploadConfig{
			AssetsDir:     "~/.config/quill/assets",
			MaxAssetBytes: 5 * 1024 * 1024,
		},
		UI: UIConfig{
			ShowFooter: true,
			Theme: ThemeConfig{
				Name: "default",
			},
		},
	}
}

// Validate checks the configuration for errors, correcting out-of-range
// values back to defaults.
func (c *Config) Validate() error {
	if c.Editor.AutosaveQuiet <= 0 {
		c.Editor.AutosaveQuiet = time.Second
	}
	if c.Assist.Timeout <= 0 {
		c.Assist.Timeout = 60 * time.Second
	}
	if c.Upload.MaxAssetBytes <= 0 {
		c.Upload.MaxAssetBytes = 5 * 1024 * 1024
	}
	return nil
}

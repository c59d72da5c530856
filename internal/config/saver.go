package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	Storage saveStorageConfig `json:"storage"`
	Editor  saveEditorConfig  `json:"editor"`
	Assist  saveAssistConfig  `json:"assist"`
	Upload  saveUploadConfig  `json:"upload"`
	UI      saveUIConfig      `json:"ui"`
}

type saveStorageConfig struct {
	DBPath string `json:"dbPath,omitempty"`
}

type saveEditorConfig struct {
	AutosaveQuiet string `json:"autosaveQuiet,omitempty"`
}

type saveAssistConfig struct {
	Enabled  *bool  `json:"enabled,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
	Model    string `json:"model,omitempty"`
	Timeout  string `json:"timeout,omitempty"`
}

type saveUploadConfig struct {
	AssetsDir     string `json:"assetsDir,omitempty"`
	MaxAssetBytes *int64 `json:"maxAssetBytes,omitempty"`
}

type saveUIConfig struct {
	ShowFooter *bool       `json:"showFooter,omitempty"`
	Theme      ThemeConfig `json:"theme"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Storage: saveStorageConfig{
			DBPath: cfg.Storage.DBPath,
		},
		Editor: saveEditorConfig{
			AutosaveQuiet: cfg.Editor.AutosaveQuiet.String(),
		},
		Assist: saveAssistConfig{
			Enabled:  &cfg.Assist.Enabled,
			Endpoint: cfg.Assist.Endpoint,
			Model:    cfg.Assist.Model,
			Timeout:  cfg.Assist.Timeout.String(),
		},
		Upload: saveUploadConfig{
			AssetsDir:     cfg.Upload.AssetsDir,
			MaxAssetBytes: &cfg.Upload.MaxAssetBytes,
		},
		UI: saveUIConfig{
			ShowFooter: &cfg.UI.ShowFooter,
			Theme:      cfg.UI.Theme,
		},
	}
}

// Save writes the config to ~/.config/quill/config.json
func Save(cfg *Config) error {
	return SaveTo(cfg, ConfigPath())
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	sc := toSaveConfig(cfg)
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SaveTheme updates only the theme name in config and saves.
func SaveTheme(themeName string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.UI.Theme.Name = themeName
	return Save(cfg)
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDir  = ".config/quill"
	configFile = "config.json"
)

// rawConfig is the JSON-unmarshaling intermediary. Pointer and string fields
// distinguish "absent" from zero so partial config files merge over defaults.
type rawConfig struct {
	Storage rawStorageConfig `json:"storage"`
	Editor  rawEditorConfig  `json:"editor"`
	Assist  rawAssistConfig  `json:"assist"`
	Upload  rawUploadConfig  `json:"upload"`
	UI      rawUIConfig      `json:"ui"`
}

type rawStorageConfig struct {
	DBPath string `json:"dbPath"`
}

type rawEditorConfig struct {
	AutosaveQuiet string `json:"autosaveQuiet"`
}

type rawAssistConfig struct {
	Enabled  *bool  `json:"enabled"`
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`
	Timeout  string `json:"timeout"`
}

type rawUploadConfig struct {
	AssetsDir     string `json:"assetsDir"`
	MaxAssetBytes *int64 `json:"maxAssetBytes"`
}

type rawUIConfig struct {
	ShowFooter *bool       `json:"showFooter"`
	Theme      ThemeConfig `json:"theme"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses ~/.config/quill/config.json
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = ConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	mergeConfig(cfg, &raw)

	cfg.Storage.DBPath = ExpandPath(cfg.Storage.DBPath)
	cfg.Upload.AssetsDir = ExpandPath(cfg.Upload.AssetsDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) {
	// Storage
	if raw.Storage.DBPath != "" {
		cfg.Storage.DBPath = raw.Storage.DBPath
	}

	// Editor
	if raw.Editor.AutosaveQuiet != "" {
		if d, err := time.ParseDuration(raw.Editor.AutosaveQuiet); err == nil {
			cfg.Editor.AutosaveQuiet = d
		}
	}

	// Assist
	if raw.Assist.Enabled != nil {
		cfg.Assist.Enabled = *raw.Assist.Enabled
	}
	if raw.Assist.Endpoint != "" {
		cfg.Assist.Endpoint = raw.Assist.Endpoint
	}
	if raw.Assist.Model != "" {
		cfg.Assist.Model = raw.Assist.Model
	}
	if raw.Assist.Timeout != "" {
		if d, err := time.ParseDuration(raw.Assist.Timeout); err == nil {
			cfg.Assist.Timeout = d
		}
	}

	// Upload
	if raw.Upload.AssetsDir != "" {
		cfg.Upload.AssetsDir = raw.Upload.AssetsDir
	}
	if raw.Upload.MaxAssetBytes != nil {
		cfg.Upload.MaxAssetBytes = *raw.Upload.MaxAssetBytes
	}

	// UI
	if raw.UI.ShowFooter != nil {
		cfg.UI.ShowFooter = *raw.UI.ShowFooter
	}
	if raw.UI.Theme.Name != "" {
		cfg.UI.Theme.Name = raw.UI.Theme.Name
	}
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}

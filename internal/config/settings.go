package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "zakolko"

// Settings are user choices persisted between runs
type Settings struct {
	ModelPath  string `json:"model_path,omitempty"`
	PredictURL string `json:"predict_url,omitempty"`
}

// storeDirOverride lets tests redirect the settings location
var storeDirOverride string

// DataStoreDir returns the per-user directory for settings and installed model packs
func DataStoreDir() (string, error) {
	if storeDirOverride != "" {
		return storeDirOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// SetDataStoreDir overrides the directory returned by DataStoreDir.
// An empty dir restores the default.
func SetDataStoreDir(dir string) {
	storeDirOverride = dir
}

func settingsPath() (string, error) {
	dir, err := DataStoreDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// LoadSettings reads saved settings. A missing file yields empty settings.
func LoadSettings() (*Settings, error) {
	path, err := settingsPath()
	if err != nil {
		return &Settings{}, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return &Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return &Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &s, nil
}

// SaveSettings writes settings to disk, creating the store directory if needed
func SaveSettings(s *Settings) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

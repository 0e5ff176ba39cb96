package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the user-editable configuration read from
// ~/.portwatch/settings.yaml. Every field has a usable default; a
// missing file is not an error.
type Settings struct {
	WorkspaceID   string `yaml:"workspace_id"`
	Namespace     string `yaml:"namespace"`
	Context       string `yaml:"context"`
	ServersFile   string `yaml:"servers_file"`
	URLAnnotation string `yaml:"url_annotation"`
	PollSeconds   int    `yaml:"poll_seconds"`
}

// DefaultSettings returns the built-in defaults, with the workspace
// id taken from the environment the way the hosting platform injects
// it.
func DefaultSettings() Settings {
	return Settings{
		WorkspaceID: os.Getenv("PORTWATCH_WORKSPACE_ID"),
		Namespace:   os.Getenv("PORTWATCH_NAMESPACE"),
		PollSeconds: 3,
	}
}

// PollInterval converts the configured poll period.
func (s Settings) PollInterval() time.Duration {
	if s.PollSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(s.PollSeconds) * time.Second
}

// LoadSettings reads settings.yaml from the config directory,
// layered over the defaults.
func LoadSettings() (Settings, error) {
	settings := DefaultSettings()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return settings, fmt.Errorf("failed to get user home directory: %w", err)
	}
	path := filepath.Join(homeDir, ".portwatch", "settings.yaml")

	return loadSettingsFrom(path, settings)
}

func loadSettingsFrom(path string, settings Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return settings, nil
}

package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings configures the CLI surfaces. The UI block is handed to consumers
// as a value; nothing in the store reads it.
type Settings struct {
	Serve ServeSettings `yaml:"serve"`
	UI    UISettings    `yaml:"ui"`
}

type ServeSettings struct {
	Addr     string        `yaml:"addr"`
	Debounce time.Duration `yaml:"debounce"`
}

type UISettings struct {
	AutoExpandTools    bool `yaml:"autoExpandTools" json:"autoExpandTools"`
	ShowRawParameters  bool `yaml:"showRawParameters" json:"showRawParameters"`
	AutoScrollToBottom bool `yaml:"autoScrollToBottom" json:"autoScrollToBottom"`
	PreviewMessages    int  `yaml:"previewMessages" json:"previewMessages"`
}

func DefaultSettings() Settings {
	return Settings{
		Serve: ServeSettings{
			Addr:     "127.0.0.1:3008",
			Debounce: 300 * time.Millisecond,
		},
		UI: UISettings{
			AutoScrollToBottom: true,
			PreviewMessages:    20,
		},
	}
}

func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "claude-sessions", "settings.yaml"), nil
}

// LoadSettings reads YAML settings over the defaults. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		p, err := DefaultSettingsPath()
		if err != nil {
			return s, nil
		}
		path = p
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), err
	}
	if s.Serve.Addr == "" {
		s.Serve.Addr = DefaultSettings().Serve.Addr
	}
	if s.Serve.Debounce <= 0 {
		s.Serve.Debounce = DefaultSettings().Serve.Debounce
	}
	if s.UI.PreviewMessages <= 0 {
		s.UI.PreviewMessages = DefaultSettings().UI.PreviewMessages
	}
	return s, nil
}

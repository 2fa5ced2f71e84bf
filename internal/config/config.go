package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Gateway GatewayConfig `toml:"gateway"`
	Journal JournalConfig `toml:"journal"`
	UI      UIConfig      `toml:"ui"`
	Theme   ThemeConfig   `toml:"theme"`
}

type GatewayConfig struct {
	Addr  string `toml:"addr"`
	Token string `toml:"token"`
}

type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type UIConfig struct {
	// PollSeconds drives the pool/database stats refresh interval.
	PollSeconds int `toml:"poll_seconds"`
}

type ThemeConfig struct {
	Border string `toml:"border"`
	Text   string `toml:"text"`
	Accent string `toml:"accent"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaults(), nil
	}
	return LoadFrom(filepath.Join(home, ".commander", "config.toml"))
}

// LoadFrom reads one config file, filling anything unset from defaults. A
// missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := defaults()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.UI.PollSeconds < 1 {
		cfg.UI.PollSeconds = defaults().UI.PollSeconds
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Gateway: GatewayConfig{Addr: "127.0.0.1:8490"},
		Journal: JournalConfig{Path: filepath.Join(".commander", "session.db")},
		UI:      UIConfig{PollSeconds: 5},
		Theme: ThemeConfig{
			Border: "#4a9a8a",
			Text:   "#d4d4d4",
			Accent: "#e6b450",
		},
	}
}

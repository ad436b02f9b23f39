// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Tap    TapConfig    `toml:"tap"`
	Export ExportConfig `toml:"export"`
}

// TapConfig maps tap session settings.
type TapConfig struct {
	Window  *int    `toml:"window"`
	Display *string `toml:"display"`
}

// ExportConfig maps MIDI export settings.
type ExportConfig struct {
	Path         *string `toml:"path"`
	Pitch        *int    `toml:"pitch"`
	CountInPitch *int    `toml:"count-in-pitch"`
	Velocity     *int    `toml:"velocity"`
	Channel      *int    `toml:"channel"`
	TrackName    *string `toml:"track-name"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

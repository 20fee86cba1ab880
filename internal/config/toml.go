// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Generate   GenerateConfig   `toml:"generate"`
	Corpus     CorpusConfig     `toml:"corpus"`
	// Languages overrides English names by language code.
	Languages map[string]string `toml:"languages"`
}

// ThresholdsConfig maps the needs-more-sentences thresholds.
type ThresholdsConfig struct {
	Sentences *int     `toml:"sentences"`
	AvgClips  *float64 `toml:"avg-clips"`
}

// GenerateConfig maps datasheet generation settings.
type GenerateConfig struct {
	Model *string `toml:"model"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv *string `toml:"api-key-env"`
}

// CorpusConfig maps corpus location settings.
type CorpusConfig struct {
	Root *string `toml:"root"`
	Jobs *int    `toml:"jobs"`
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if cfg.Thresholds.Sentences != nil || cfg.Languages != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[thresholds]
sentences = 500
avg-clips = 3.5

[generate]
model = "gemini-2.5-flash"
api-key-env = "MY_KEY"

[corpus]
root = "/data/cv-corpus"
jobs = 4

[languages]
kk = "Kazakh (Qazaq)"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Thresholds.Sentences == nil || *cfg.Thresholds.Sentences != 500 {
		t.Fatalf("unexpected sentences threshold: %v", cfg.Thresholds.Sentences)
	}
	if cfg.Thresholds.AvgClips == nil || *cfg.Thresholds.AvgClips != 3.5 {
		t.Fatalf("unexpected avg clips threshold: %v", cfg.Thresholds.AvgClips)
	}
	if cfg.Generate.Model == nil || *cfg.Generate.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected model: %v", cfg.Generate.Model)
	}
	if cfg.Generate.APIKeyEnv == nil || *cfg.Generate.APIKeyEnv != "MY_KEY" {
		t.Fatalf("unexpected api key env: %v", cfg.Generate.APIKeyEnv)
	}
	if cfg.Corpus.Jobs == nil || *cfg.Corpus.Jobs != 4 {
		t.Fatalf("unexpected jobs: %v", cfg.Corpus.Jobs)
	}
	if cfg.Languages["kk"] != "Kazakh (Qazaq)" {
		t.Fatalf("unexpected languages: %v", cfg.Languages)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[thresholds]\nsentence = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for misspelled key")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != "/tmp/cfg/cvsheet/config.toml" {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != "/tmp/data/cvsheet/history.db" {
		t.Fatalf("unexpected db path %q", got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing config should not be an error: %v", err)
	}
	if cfg.Session.Mode != nil || cfg.Offline.Enabled != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[session]
mode = "multi"
count = 3

[provider]
url = "http://localhost:8080/random"
timeout-seconds = 5

[offline]
enabled = true
lang = "en"
words = 20
caps = 0.1
punct-set = ".,!"
focus-weak = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Session.Mode == nil || *cfg.Session.Mode != "multi" {
		t.Fatalf("expected mode multi, got %+v", cfg.Session.Mode)
	}
	if cfg.Session.Count == nil || *cfg.Session.Count != 3 {
		t.Fatalf("expected count 3, got %+v", cfg.Session.Count)
	}
	if cfg.Session.Duration != nil {
		t.Fatalf("expected duration unset, got %d", *cfg.Session.Duration)
	}
	if cfg.Provider.URL == nil || *cfg.Provider.URL != "http://localhost:8080/random" {
		t.Fatalf("expected provider url, got %+v", cfg.Provider.URL)
	}
	if cfg.Provider.TimeoutSeconds == nil || *cfg.Provider.TimeoutSeconds != 5 {
		t.Fatalf("expected timeout 5, got %+v", cfg.Provider.TimeoutSeconds)
	}
	if cfg.Offline.Enabled == nil || !*cfg.Offline.Enabled {
		t.Fatalf("expected offline enabled")
	}
	if cfg.Offline.CapsPct == nil || *cfg.Offline.CapsPct != 0.1 {
		t.Fatalf("expected caps 0.1, got %+v", cfg.Offline.CapsPct)
	}
	if cfg.Offline.PunctSet == nil || *cfg.Offline.PunctSet != ".,!" {
		t.Fatalf("expected punct set, got %+v", cfg.Offline.PunctSet)
	}
	if cfg.Offline.WeakTop != nil {
		t.Fatalf("expected weak-top unset, got %d", *cfg.Offline.WeakTop)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("session = [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

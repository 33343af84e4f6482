package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LFroesch/fcmd/internal/logger"
)

func init() {
	logger.Disable()
}

func TestLoadDefaultConfig(t *testing.T) {
	homeDir := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", homeDir)

	cfg := Load()

	if cfg == nil {
		t.Fatal("Load() returned nil")
	}
	if cfg.PendingKeyTimeoutMS != 600 {
		t.Errorf("PendingKeyTimeoutMS = %d, want 600", cfg.PendingKeyTimeoutMS)
	}
	if cfg.UndoCapacity != 50 {
		t.Errorf("UndoCapacity = %d, want 50", cfg.UndoCapacity)
	}
	if len(cfg.SkipDirectories) == 0 {
		t.Error("Default skip directories not set")
	}
	if want := filepath.Join(homeDir, ".local", "share", "fcmd", "trash"); cfg.TrashDir != want {
		t.Errorf("TrashDir = %s, want %s", cfg.TrashDir, want)
	}

	path, _ := GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config was not written: %v", err)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	homeDir := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", homeDir)

	cfg := Load()
	cfg.ShowHidden = true
	cfg.Editor = "nvim"
	cfg.Theme = "nord"
	cfg.SmallOpMaxItems = 4

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded := Load()

	if loaded.ShowHidden != cfg.ShowHidden {
		t.Errorf("ShowHidden mismatch: got %v, want %v", loaded.ShowHidden, cfg.ShowHidden)
	}
	if loaded.Editor != cfg.Editor {
		t.Errorf("Editor mismatch: got %s, want %s", loaded.Editor, cfg.Editor)
	}
	if loaded.Theme != cfg.Theme {
		t.Errorf("Theme mismatch: got %s, want %s", loaded.Theme, cfg.Theme)
	}
	if loaded.SmallOpMaxItems != 4 {
		t.Errorf("SmallOpMaxItems mismatch: got %d, want 4", loaded.SmallOpMaxItems)
	}
}

func TestEnvOverride(t *testing.T) {
	homeDir := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", homeDir)
	t.Setenv("FCMD_THEME", "gruvbox")

	cfg := Load()
	if cfg.Theme != "gruvbox" {
		t.Errorf("Theme = %s, want gruvbox from environment", cfg.Theme)
	}
}

func TestValidateClamps(t *testing.T) {
	tests := []struct {
		name  string
		in    Config
		check func(*Config) bool
	}{
		{"timeout too low", Config{PendingKeyTimeoutMS: 5}, func(c *Config) bool { return c.PendingKeyTimeoutMS == 100 }},
		{"timeout too high", Config{PendingKeyTimeoutMS: 90000}, func(c *Config) bool { return c.PendingKeyTimeoutMS == 5000 }},
		{"undo capacity fixed", Config{UndoCapacity: 7}, func(c *Config) bool { return c.UndoCapacity == 50 }},
		{"negative items", Config{SmallOpMaxItems: -3}, func(c *Config) bool { return c.SmallOpMaxItems == 0 }},
		{"find depth too high", Config{FindMaxDepth: 99}, func(c *Config) bool { return c.FindMaxDepth == 32 }},
		{"find entries too low", Config{FindMaxEntries: 3}, func(c *Config) bool { return c.FindMaxEntries == 100 }},
		{"empty theme", Config{}, func(c *Config) bool { return c.Theme == "default" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			validate(&cfg)
			if !tt.check(&cfg) {
				t.Errorf("validate(%+v) produced %+v", tt.in, cfg)
			}
		})
	}
}

func TestLoadFromBrokenFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadFrom(path)
	if cfg == nil || cfg.PendingKeyTimeoutMS != 600 {
		t.Errorf("broken config should fall back to defaults, got %+v", cfg)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blokengine/blok/engine/core"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AppName != "Blok" {
		t.Errorf("AppName = %q", cfg.AppName)
	}
	if len(cfg.Assets.SearchPaths) != 1 || cfg.Assets.SearchPaths[0] != "assets" {
		t.Errorf("SearchPaths = %v", cfg.Assets.SearchPaths)
	}
	if cfg.Logging.Level != core.InfoLevel {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
}

func TestLoadParsesFile(t *testing.T) {
	content := `app_name = "Demo"

[assets]
search_paths = ["models", "shared/models"]
preload = ["cube.obj"]

[logging]
level = "debug"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AppName != "Demo" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "Demo")
	}
	want := []string{"models", "shared/models"}
	if len(cfg.Assets.SearchPaths) != len(want) {
		t.Fatalf("SearchPaths = %v, want %v", cfg.Assets.SearchPaths, want)
	}
	for i := range want {
		if cfg.Assets.SearchPaths[i] != want[i] {
			t.Errorf("SearchPaths[%d] = %q, want %q", i, cfg.Assets.SearchPaths[i], want[i])
		}
	}
	if len(cfg.Assets.Preload) != 1 || cfg.Assets.Preload[0] != "cube.obj" {
		t.Errorf("Preload = %v", cfg.Assets.Preload)
	}
	if cfg.Logging.Level != core.DebugLevel {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, core.DebugLevel)
	}
}

func TestLoadBackfillsEmptySections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("app_name = \"Sparse\"\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Assets.SearchPaths) == 0 {
		t.Error("empty search paths were not backfilled")
	}
	if cfg.Logging.Level == "" {
		t.Error("empty log level was not backfilled")
	}
}

func TestLoadRejectsInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("app_name = [unclosed\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted invalid TOML")
	}
}

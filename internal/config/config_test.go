package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"petreel/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config to report exists=false (%s)", resolved)
	}
	if cfg.Process.BatchSize != 5 {
		t.Fatalf("expected default process batch size, got %d", cfg.Process.BatchSize)
	}
	if len(cfg.Publish.Hours) != 3 {
		t.Fatalf("expected default publish hours, got %v", cfg.Publish.Hours)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`raw_dir = "` + filepath.Join(dir, "raw") + `"`,
		"[collect]",
		`hashtags = ["  #pets ", ""]`,
		"limit = 4",
		"[publish]",
		"batch_size = 2",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if got := cfg.Collect.Hashtags; len(got) != 1 || got[0] != "#pets" {
		t.Fatalf("expected trimmed hashtags, got %v", got)
	}
	if cfg.Publish.BatchSize != 2 {
		t.Fatalf("expected publish batch size 2, got %d", cfg.Publish.BatchSize)
	}
	if cfg.Publish.UploadPollAttempts != 30 {
		t.Fatalf("expected default poll attempts, got %d", cfg.Publish.UploadPollAttempts)
	}
}

func TestValidateRejectsBadHours(t *testing.T) {
	cfg := config.Default()
	cfg.Publish.Hours = []int{8, 26}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for out-of-range publish hour")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.RawDir = filepath.Join(dir, "raw")
	cfg.Paths.ReadyDir = filepath.Join(dir, "ready")
	cfg.Paths.WatermarkDir = filepath.Join(dir, "wm")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, sub := range []string{"raw", "ready", "logs"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Fatalf("expected directory %s: %v", sub, err)
		}
	}
}

package testsupport

import (
	"path/filepath"
	"testing"

	"petreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.RawDir = filepath.Join(base, "raw")
	cfg.Paths.ReadyDir = filepath.Join(base, "ready")
	cfg.Paths.WatermarkDir = filepath.Join(base, "watermarks")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return &cfg
}

// WithPublishHours overrides the scheduled posting hours on the test config.
func WithPublishHours(hours ...int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Publish.Hours = hours
	}
}

// WithHashtags overrides the collection hashtags on the test config.
func WithHashtags(tags ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Collect.Hashtags = tags
	}
}

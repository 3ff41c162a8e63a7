package process_test

import (
	"path/filepath"
	"testing"

	"petreel/internal/process"
	"petreel/internal/testsupport"
)

func TestResolveWatermarkPrefersCampaignAsset(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "brand.png"), 8)
	testsupport.WriteFile(t, filepath.Join(dir, "logo_7.png"), 8)
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), 8)

	path, ok := process.ResolveWatermark(dir, 7)
	if !ok || path != filepath.Join(dir, "logo_7.png") {
		t.Fatalf("expected campaign asset, got %q (ok=%v)", path, ok)
	}

	// Without a campaign the lexically first image wins.
	path, ok = process.ResolveWatermark(dir, 0)
	if !ok || path != filepath.Join(dir, "brand.png") {
		t.Fatalf("expected default asset, got %q (ok=%v)", path, ok)
	}

	// A campaign without its own asset falls back to the default.
	path, ok = process.ResolveWatermark(dir, 3)
	if !ok || path != filepath.Join(dir, "brand.png") {
		t.Fatalf("expected fallback asset, got %q (ok=%v)", path, ok)
	}
}

func TestResolveWatermarkMissingDir(t *testing.T) {
	if path, ok := process.ResolveWatermark(filepath.Join(t.TempDir(), "absent"), 0); ok {
		t.Fatalf("expected no watermark, got %q", path)
	}
	if path, ok := process.ResolveWatermark("", 0); ok {
		t.Fatalf("expected no watermark for empty dir, got %q", path)
	}
}

package collect

import (
	"context"

	"petreel/internal/platform"
)

// VideoMetadata describes a trending video discovered by a collector.
type VideoMetadata struct {
	Platform  platform.Platform
	SourceID  string
	SourceURL string
	Title     string
	Author    string
	Hashtags  []string
	Views     int64
	Likes     int64
	// MediaURL is the direct progressive or HLS media location, when the
	// source exposes one. Collectors without direct media access leave it
	// empty and implement their own Download.
	MediaURL string
}

// Collector discovers and fetches trending videos from one source platform.
type Collector interface {
	// Platform identifies the source this collector searches.
	Platform() platform.Platform

	// Search returns up to limit trending videos matching the hashtags,
	// ordered most popular first.
	Search(ctx context.Context, hashtags []string, limit int) ([]VideoMetadata, error)

	// Download fetches the video media into destDir and returns the local
	// path of the downloaded file.
	Download(ctx context.Context, video VideoMetadata, destDir string) (string, error)
}

package publish_test

import (
	"context"
	"errors"
	"testing"

	"petreel/internal/platform"
	"petreel/internal/publish"
)

type fakePublisher struct {
	plat    platform.Platform
	post    publish.Post
	err     error
	bundles []publish.Bundle
}

func (f *fakePublisher) Platform() platform.Platform { return f.plat }

func (f *fakePublisher) Publish(_ context.Context, bundle publish.Bundle) (publish.Post, error) {
	f.bundles = append(f.bundles, bundle)
	if f.err != nil {
		return publish.Post{}, f.err
	}
	return f.post, nil
}

func TestPublishToAllIsolatesFailures(t *testing.T) {
	instagram := &fakePublisher{plat: platform.Instagram, post: publish.Post{PostID: "ig-1"}}
	tiktok := &fakePublisher{plat: platform.TikTok, err: errors.New("upload rejected")}
	youtube := &fakePublisher{plat: platform.YouTube, post: publish.Post{PostID: "yt-1"}}

	results := publish.PublishToAll(context.Background(),
		[]publish.Publisher{instagram, tiktok, youtube},
		publish.Content{Title: "Corgi", Caption: "Corgi zoomies", Hashtags: []string{"#pets"}})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	succeeded, failed := 0, 0
	for _, result := range results {
		if result.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	if succeeded != 2 || failed != 1 {
		t.Fatalf("expected 2 successes and 1 failure, got %d/%d", succeeded, failed)
	}

	// Results preserve publisher order.
	if results[0].Platform != platform.Instagram || results[0].PostID != "ig-1" {
		t.Fatalf("unexpected first result %+v", results[0])
	}
	if results[1].Platform != platform.TikTok || results[1].OK() {
		t.Fatalf("expected tiktok failure second, got %+v", results[1])
	}
}

func TestPublishToAllOptimizesPerPlatform(t *testing.T) {
	instagram := &fakePublisher{plat: platform.Instagram}
	tiktok := &fakePublisher{plat: platform.TikTok}

	publish.PublishToAll(context.Background(),
		[]publish.Publisher{instagram, tiktok},
		publish.Content{Caption: "Cute pets", Hashtags: []string{"#pets"}})

	igTags := instagram.bundles[0].Hashtags
	ttTags := tiktok.bundles[0].Hashtags

	hasTag := func(tags []string, tag string) bool {
		for _, t := range tags {
			if t == tag {
				return true
			}
		}
		return false
	}
	if !hasTag(igTags, "#petsofinstagram") {
		t.Fatalf("expected instagram defaults, got %v", igTags)
	}
	if !hasTag(ttTags, "#fyp") {
		t.Fatalf("expected tiktok defaults, got %v", ttTags)
	}
}

func TestRegistryToggles(t *testing.T) {
	instagram := &fakePublisher{plat: platform.Instagram}
	tiktok := &fakePublisher{plat: platform.TikTok}
	registry := publish.NewRegistry(instagram, tiktok)

	if len(registry.Active()) != 2 {
		t.Fatalf("expected both publishers active, got %d", len(registry.Active()))
	}

	registry.SetEnabled(platform.TikTok, false)
	active := registry.Active()
	if len(active) != 1 || active[0].Platform() != platform.Instagram {
		t.Fatalf("expected only instagram active, got %d", len(active))
	}
	if registry.Enabled(platform.TikTok) {
		t.Fatal("expected tiktok disabled")
	}

	registry.SetEnabled(platform.TikTok, true)
	if len(registry.Active()) != 2 {
		t.Fatal("expected tiktok re-enabled")
	}

	// Unknown platforms are ignored.
	registry.SetEnabled(platform.Facebook, true)
	if registry.Enabled(platform.Facebook) {
		t.Fatal("expected unregistered platform to stay disabled")
	}
}

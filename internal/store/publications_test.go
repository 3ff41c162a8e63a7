package store_test

import (
	"context"
	"testing"

	"petreel/internal/platform"
	"petreel/internal/store"
	"petreel/internal/testsupport"
)

func TestInsertPublicationRecordsFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedProcessed(t, st, platform.TikTok, "vid-1", "/tmp/raw.mp4", "/tmp/ready.mp4")

	if _, err := st.InsertPublication(ctx, store.NewPublication{
		ItemID:         item.ID,
		Platform:       platform.Instagram,
		PlatformPostID: "ig-1",
		PostURL:        "https://www.instagram.com/reel/ig-1",
		Caption:        "cute",
		Status:         store.PublicationPublished,
	}); err != nil {
		t.Fatalf("InsertPublication success: %v", err)
	}

	if _, err := st.InsertPublication(ctx, store.NewPublication{
		ItemID:       item.ID,
		Platform:     platform.TikTok,
		Status:       store.PublicationFailed,
		ErrorMessage: "upload rejected",
	}); err != nil {
		t.Fatalf("InsertPublication failure: %v", err)
	}

	pubs, err := st.PublicationsForItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("PublicationsForItem: %v", err)
	}
	if len(pubs) != 2 {
		t.Fatalf("expected both attempts recorded, got %d", len(pubs))
	}
	if pubs[0].Status != store.PublicationPublished || pubs[0].PublishedAt == nil {
		t.Fatalf("expected first publication published with timestamp, got %+v", pubs[0])
	}
	if pubs[1].Status != store.PublicationFailed {
		t.Fatalf("expected second publication failed, got %s", pubs[1].Status)
	}
	if pubs[1].PublishedAt != nil {
		t.Fatal("failed publication must not carry published_at")
	}
	if pubs[1].ErrorMessage != "upload rejected" {
		t.Fatalf("expected failure reason recorded, got %q", pubs[1].ErrorMessage)
	}
}

func TestPublicationsForMetricsRefreshSelection(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedProcessed(t, st, platform.TikTok, "vid-2", "/tmp/raw.mp4", "/tmp/ready.mp4")

	older, err := st.InsertPublication(ctx, store.NewPublication{
		ItemID:         item.ID,
		Platform:       platform.Instagram,
		PlatformPostID: "ig-old",
		Status:         store.PublicationPublished,
	})
	if err != nil {
		t.Fatalf("InsertPublication: %v", err)
	}
	newer, err := st.InsertPublication(ctx, store.NewPublication{
		ItemID:         item.ID,
		Platform:       platform.YouTube,
		PlatformPostID: "yt-new",
		Status:         store.PublicationPublished,
	})
	if err != nil {
		t.Fatalf("InsertPublication: %v", err)
	}
	// Failed attempts and attempts without a post id are never polled.
	if _, err := st.InsertPublication(ctx, store.NewPublication{
		ItemID:       item.ID,
		Platform:     platform.Facebook,
		Status:       store.PublicationFailed,
		ErrorMessage: "nope",
	}); err != nil {
		t.Fatalf("InsertPublication: %v", err)
	}

	pubs, err := st.PublicationsForMetricsRefresh(ctx, 10)
	if err != nil {
		t.Fatalf("PublicationsForMetricsRefresh: %v", err)
	}
	if len(pubs) != 2 {
		t.Fatalf("expected two refreshable publications, got %d", len(pubs))
	}
	if pubs[0].ID != newer.ID {
		t.Fatalf("expected most recent first, got %d (want %d)", pubs[0].ID, newer.ID)
	}
	if pubs[1].ID != older.ID {
		t.Fatalf("expected older second, got %d", pubs[1].ID)
	}
}

func TestUpdatePublicationMetricsEngagement(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedProcessed(t, st, platform.TikTok, "vid-3", "/tmp/raw.mp4", "/tmp/ready.mp4")
	pub, err := st.InsertPublication(ctx, store.NewPublication{
		ItemID:         item.ID,
		Platform:       platform.Instagram,
		PlatformPostID: "ig-1",
		Status:         store.PublicationPublished,
	})
	if err != nil {
		t.Fatalf("InsertPublication: %v", err)
	}

	if err := st.UpdatePublicationMetrics(ctx, pub.ID, store.PublicationMetrics{
		Views: 100, Likes: 10, Comments: 5, Shares: 5,
	}); err != nil {
		t.Fatalf("UpdatePublicationMetrics: %v", err)
	}
	updated, err := st.GetPublication(ctx, pub.ID)
	if err != nil {
		t.Fatalf("GetPublication: %v", err)
	}
	if updated.EngagementRate != 20.0 {
		t.Fatalf("expected engagement rate 20.0, got %v", updated.EngagementRate)
	}
	if updated.LastMetricsUpdate == nil {
		t.Fatal("expected last_metrics_update to be stamped")
	}

	// Zero views must leave the prior rate untouched.
	if err := st.UpdatePublicationMetrics(ctx, pub.ID, store.PublicationMetrics{
		Views: 0, Likes: 3, Comments: 1, Shares: 0,
	}); err != nil {
		t.Fatalf("UpdatePublicationMetrics: %v", err)
	}
	updated, err = st.GetPublication(ctx, pub.ID)
	if err != nil {
		t.Fatalf("GetPublication: %v", err)
	}
	if updated.EngagementRate != 20.0 {
		t.Fatalf("expected prior engagement rate retained, got %v", updated.EngagementRate)
	}
	if updated.Likes != 3 {
		t.Fatalf("expected counters updated even without rate, got likes=%d", updated.Likes)
	}
}

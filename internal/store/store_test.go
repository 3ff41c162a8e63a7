package store_test

import (
	"context"
	"errors"
	"testing"

	"petreel/internal/platform"
	"petreel/internal/store"
	"petreel/internal/testsupport"
)

func TestInsertCollectedIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := store.NewCollectedItem{
		SourcePlatform: platform.TikTok,
		SourceID:       "vid-1",
		Title:          "Corgi zoomies",
		Hashtags:       []string{"pets", "dogs"},
		Views:          5000,
		Likes:          400,
	}

	first, err := st.InsertCollected(ctx, item)
	if err != nil {
		t.Fatalf("InsertCollected: %v", err)
	}
	if first.Status != store.StatusCollected {
		t.Fatalf("expected collected status, got %s", first.Status)
	}
	if len(first.Hashtags) != 2 || first.Hashtags[0] != "pets" {
		t.Fatalf("hashtags round-trip failed: %v", first.Hashtags)
	}

	_, err = st.InsertCollected(ctx, item)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	summary, err := st.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if summary.Total != 1 {
		t.Fatalf("expected single item after duplicate insert, got %d", summary.Total)
	}
}

func TestFindBySource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	seeded := testsupport.SeedCollected(t, st, platform.YouTube, "yt-1", "/tmp/yt-1.mp4")

	found, err := st.FindBySource(ctx, platform.YouTube, "yt-1")
	if err != nil {
		t.Fatalf("FindBySource: %v", err)
	}
	if found == nil || found.ID != seeded.ID {
		t.Fatalf("expected to find seeded item, got %+v", found)
	}

	missing, err := st.FindBySource(ctx, platform.TikTok, "yt-1")
	if err != nil {
		t.Fatalf("FindBySource: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown source, got %+v", missing)
	}
}

func TestItemsInStatusOrderIsDeterministic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		testsupport.SeedCollected(t, st, platform.TikTok, id, "/tmp/"+id+".mp4")
	}

	items, err := st.ItemsInStatus(ctx, store.StatusCollected, 2)
	if err != nil {
		t.Fatalf("ItemsInStatus: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected limit to apply, got %d items", len(items))
	}
	if items[0].ID >= items[1].ID {
		t.Fatalf("expected ascending id order, got %d then %d", items[0].ID, items[1].ID)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedCollected(t, st, platform.TikTok, "vid-2", "/tmp/vid-2.mp4")

	if err := st.MarkProcessed(ctx, item.ID, "/tmp/vid-2-ready.mp4"); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	processed, err := st.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if processed.Status != store.StatusProcessed {
		t.Fatalf("expected processed, got %s", processed.Status)
	}
	if processed.ProcessedAt == nil {
		t.Fatal("expected processed_at to be stamped")
	}
	if processed.ProcessedPath != "/tmp/vid-2-ready.mp4" {
		t.Fatalf("unexpected processed path %q", processed.ProcessedPath)
	}

	// processing_error is only reachable from collected.
	if err := st.MarkProcessingError(ctx, item.ID, "boom"); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from processed, got %v", err)
	}

	if err := st.MarkPublished(ctx, item.ID); err != nil {
		t.Fatalf("MarkPublished: %v", err)
	}
	published, err := st.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if published.Status != store.StatusPublished {
		t.Fatalf("expected published, got %s", published.Status)
	}
	if published.PublishedAt == nil {
		t.Fatal("expected published_at to be stamped")
	}

	// Published items never regress.
	if err := st.MarkProcessed(ctx, item.ID, "/elsewhere.mp4"); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from published, got %v", err)
	}
}

func TestRequeueForProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedCollected(t, st, platform.TikTok, "vid-3", "/tmp/vid-3.mp4")

	if err := st.MarkProcessingError(ctx, item.ID, "file missing"); err != nil {
		t.Fatalf("MarkProcessingError: %v", err)
	}
	failed, err := st.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if failed.Status != store.StatusProcessingError {
		t.Fatalf("expected processing_error, got %s", failed.Status)
	}
	if failed.ErrorMessage != "file missing" {
		t.Fatalf("expected error message to persist, got %q", failed.ErrorMessage)
	}

	if err := st.RequeueForProcessing(ctx, item.ID); err != nil {
		t.Fatalf("RequeueForProcessing: %v", err)
	}
	requeued, err := st.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if requeued.Status != store.StatusCollected {
		t.Fatalf("expected collected after requeue, got %s", requeued.Status)
	}
	if requeued.ErrorMessage != "" {
		t.Fatalf("expected error message cleared, got %q", requeued.ErrorMessage)
	}

	// Requeue only applies to processing_error items.
	if err := st.RequeueForProcessing(ctx, item.ID); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for requeue of collected item, got %v", err)
	}
}

func TestParseItemStatus(t *testing.T) {
	if status, ok := store.ParseItemStatus(" Processed "); !ok || status != store.StatusProcessed {
		t.Fatalf("expected processed, got %s ok=%v", status, ok)
	}
	if _, ok := store.ParseItemStatus("encoding"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}

package testsupport

import (
	"context"
	"testing"

	"petreel/internal/config"
	"petreel/internal/platform"
	"petreel/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedCollected inserts a collected item for tests using the provided store.
func SeedCollected(t testing.TB, st *store.Store, plat platform.Platform, sourceID, localPath string) *store.ContentItem {
	t.Helper()

	item, err := st.InsertCollected(context.Background(), store.NewCollectedItem{
		SourcePlatform: plat,
		SourceID:       sourceID,
		SourceURL:      "https://example.com/" + sourceID,
		Title:          "Puppy compilation " + sourceID,
		Author:         "@petclips",
		Hashtags:       []string{"pets", "dogs"},
		Views:          1000,
		Likes:          100,
		LocalPath:      localPath,
	})
	if err != nil {
		t.Fatalf("store.InsertCollected: %v", err)
	}
	return item
}

// SeedProcessed inserts a collected item and advances it to processed.
func SeedProcessed(t testing.TB, st *store.Store, plat platform.Platform, sourceID, localPath, processedPath string) *store.ContentItem {
	t.Helper()

	item := SeedCollected(t, st, plat, sourceID, localPath)
	if err := st.MarkProcessed(context.Background(), item.ID, processedPath); err != nil {
		t.Fatalf("store.MarkProcessed: %v", err)
	}
	refreshed, err := st.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("store.GetItem: %v", err)
	}
	return refreshed
}

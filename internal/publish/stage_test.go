package publish_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"petreel/internal/platform"
	"petreel/internal/publish"
	"petreel/internal/services"
	"petreel/internal/store"
	"petreel/internal/testsupport"
)

type fakeNotifier struct {
	publishes atomic.Int64
}

func (f *fakeNotifier) NotifyCollectionCompleted(context.Context, int) error { return nil }
func (f *fakeNotifier) NotifyPublishCompleted(context.Context, string, int, int) error {
	f.publishes.Add(1)
	return nil
}
func (f *fakeNotifier) NotifyCleanupCompleted(context.Context, int, int64) error { return nil }
func (f *fakeNotifier) NotifyReport(context.Context, string) error               { return nil }
func (f *fakeNotifier) NotifyError(context.Context, error, string) error         { return nil }
func (f *fakeNotifier) TestNotification(context.Context) error                   { return nil }

func TestPublishBatchRecordsPartialSuccess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.SeedProcessed(t, st, platform.TikTok, "vid-1", "/tmp/raw.mp4", "/tmp/ready.mp4")

	registry := publish.NewRegistry(
		&fakePublisher{plat: platform.Instagram, post: publish.Post{PostID: "ig-1", PostURL: "https://ig/1"}},
		&fakePublisher{plat: platform.YouTube, err: errors.New("quota exceeded")},
	)
	notifier := &fakeNotifier{}
	stage := publish.NewStage(cfg, st, registry, notifier, nil)

	published, err := stage.PublishBatch(context.Background())
	if err != nil {
		t.Fatalf("PublishBatch: %v", err)
	}
	if published != 1 {
		t.Fatalf("expected 1 item dispatched, got %d", published)
	}

	// Item reaches published despite the youtube failure.
	refreshed, err := st.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if refreshed.Status != store.StatusPublished {
		t.Fatalf("expected published, got %s", refreshed.Status)
	}

	pubs, err := st.PublicationsForItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("PublicationsForItem: %v", err)
	}
	if len(pubs) != 2 {
		t.Fatalf("expected a publication per platform, got %d", len(pubs))
	}

	byPlatform := make(map[platform.Platform]*store.Publication, len(pubs))
	for _, pub := range pubs {
		byPlatform[pub.Platform] = pub
	}
	ig := byPlatform[platform.Instagram]
	if ig == nil || ig.Status != store.PublicationPublished || ig.PlatformPostID != "ig-1" {
		t.Fatalf("unexpected instagram publication %+v", ig)
	}
	yt := byPlatform[platform.YouTube]
	if yt == nil || yt.Status != store.PublicationFailed || yt.ErrorMessage == "" {
		t.Fatalf("unexpected youtube publication %+v", yt)
	}

	if notifier.publishes.Load() != 1 {
		t.Fatal("expected a publish notification")
	}
}

func TestPublishBatchHonorsBatchSize(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Publish.BatchSize = 1
	st := testsupport.MustOpenStore(t, cfg)

	testsupport.SeedProcessed(t, st, platform.TikTok, "a", "/tmp/a.mp4", "/tmp/a-ready.mp4")
	testsupport.SeedProcessed(t, st, platform.TikTok, "b", "/tmp/b.mp4", "/tmp/b-ready.mp4")

	registry := publish.NewRegistry(&fakePublisher{plat: platform.Instagram, post: publish.Post{PostID: "x"}})
	stage := publish.NewStage(cfg, st, registry, &fakeNotifier{}, nil)

	published, err := stage.PublishBatch(context.Background())
	if err != nil {
		t.Fatalf("PublishBatch: %v", err)
	}
	if published != 1 {
		t.Fatalf("expected batch size to limit dispatch, got %d", published)
	}
}

func TestPublishItemUnknownIDReturnsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	registry := publish.NewRegistry(&fakePublisher{plat: platform.Instagram})
	stage := publish.NewStage(cfg, st, registry, &fakeNotifier{}, nil)

	err := stage.PublishItem(context.Background(), 9999)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error for unknown item, got %v", err)
	}
}

func TestPublishCampaignBatchAppliesCampaignContent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedProcessed(t, st, platform.TikTok, "camp", "/tmp/camp.mp4", "/tmp/camp-ready.mp4")

	campaign, err := st.CreateCampaign(context.Background(), store.NewCampaign{
		Name:           "spring-sale",
		TargetHashtags: []string{"#springsale"},
		CTAText:        "Visit the spring sale!",
	})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	pub := &fakePublisher{plat: platform.Instagram, post: publish.Post{PostID: "ig-1"}}
	stage := publish.NewStage(cfg, st, publish.NewRegistry(pub), &fakeNotifier{}, nil)

	published, err := stage.PublishCampaignBatch(context.Background(), campaign)
	if err != nil {
		t.Fatalf("PublishCampaignBatch: %v", err)
	}
	if published != 1 {
		t.Fatalf("expected 1 item dispatched, got %d", published)
	}
	if len(pub.bundles) != 1 {
		t.Fatalf("expected a single publish call, got %d", len(pub.bundles))
	}

	bundle := pub.bundles[0]
	if !strings.Contains(bundle.Caption, "Visit the spring sale!") {
		t.Fatalf("expected campaign call to action in caption, got %q", bundle.Caption)
	}
	found := false
	for _, tag := range bundle.Hashtags {
		if tag == "#springsale" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected campaign hashtag in %v", bundle.Hashtags)
	}
}

func TestPublishItemRequiresProcessedState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.SeedCollected(t, st, platform.TikTok, "raw", "/tmp/raw.mp4")

	registry := publish.NewRegistry(&fakePublisher{plat: platform.Instagram})
	stage := publish.NewStage(cfg, st, registry, &fakeNotifier{}, nil)

	if err := stage.PublishItem(context.Background(), item.ID); err == nil {
		t.Fatal("expected error for collected item")
	}
}

func TestPublishItemDispatchesSingleItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.SeedProcessed(t, st, platform.TikTok, "one", "/tmp/one.mp4", "/tmp/one-ready.mp4")

	pub := &fakePublisher{plat: platform.Instagram, post: publish.Post{PostID: "ig-9"}}
	registry := publish.NewRegistry(pub)
	stage := publish.NewStage(cfg, st, registry, &fakeNotifier{}, nil)

	if err := stage.PublishItem(context.Background(), item.ID); err != nil {
		t.Fatalf("PublishItem: %v", err)
	}
	if len(pub.bundles) != 1 {
		t.Fatalf("expected a single publish call, got %d", len(pub.bundles))
	}
	if pub.bundles[0].VideoPath != "/tmp/one-ready.mp4" {
		t.Fatalf("expected processed media path, got %q", pub.bundles[0].VideoPath)
	}

	refreshed, err := st.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if refreshed.Status != store.StatusPublished {
		t.Fatalf("expected published, got %s", refreshed.Status)
	}
}

func TestPublishItemRestrictsToPlatformSubset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.SeedProcessed(t, st, platform.TikTok, "sub", "/tmp/sub.mp4", "/tmp/sub-ready.mp4")

	ig := &fakePublisher{plat: platform.Instagram, post: publish.Post{PostID: "ig-1"}}
	yt := &fakePublisher{plat: platform.YouTube, post: publish.Post{PostID: "yt-1"}}
	stage := publish.NewStage(cfg, st, publish.NewRegistry(ig, yt), &fakeNotifier{}, nil)

	if err := stage.PublishItem(context.Background(), item.ID, platform.YouTube); err != nil {
		t.Fatalf("PublishItem: %v", err)
	}
	if len(ig.bundles) != 0 {
		t.Fatalf("expected instagram excluded from subset, got %d calls", len(ig.bundles))
	}
	if len(yt.bundles) != 1 {
		t.Fatalf("expected youtube dispatch, got %d calls", len(yt.bundles))
	}

	pubs, err := st.PublicationsForItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("PublicationsForItem: %v", err)
	}
	if len(pubs) != 1 || pubs[0].Platform != platform.YouTube {
		t.Fatalf("expected a single youtube publication, got %+v", pubs)
	}
}

func TestPublishItemSkipsUnconfiguredPlatforms(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.SeedProcessed(t, st, platform.TikTok, "nc", "/tmp/nc.mp4", "/tmp/nc-ready.mp4")

	unconfigured := &fakePublisher{
		plat: platform.Instagram,
		err:  services.Wrap(services.ErrConfiguration, "publish", "instagram", "credentials not configured", nil),
	}
	configured := &fakePublisher{plat: platform.YouTube, post: publish.Post{PostID: "yt-1"}}
	stage := publish.NewStage(cfg, st, publish.NewRegistry(unconfigured, configured), &fakeNotifier{}, nil)

	if err := stage.PublishItem(context.Background(), item.ID); err != nil {
		t.Fatalf("PublishItem: %v", err)
	}

	// The unconfigured platform leaves no failed publication behind.
	pubs, err := st.PublicationsForItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("PublicationsForItem: %v", err)
	}
	if len(pubs) != 1 || pubs[0].Platform != platform.YouTube {
		t.Fatalf("expected only the youtube publication, got %+v", pubs)
	}
}

func TestPublishItemFailsWhenAllPlatformsUnconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.SeedProcessed(t, st, platform.TikTok, "nc2", "/tmp/nc2.mp4", "/tmp/nc2-ready.mp4")

	unconfigured := &fakePublisher{
		plat: platform.Instagram,
		err:  services.Wrap(services.ErrConfiguration, "publish", "instagram", "credentials not configured", nil),
	}
	stage := publish.NewStage(cfg, st, publish.NewRegistry(unconfigured), &fakeNotifier{}, nil)

	err := stage.PublishItem(context.Background(), item.ID)
	if !services.IsNotConfigured(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	refreshed, err := st.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if refreshed.Status != store.StatusProcessed {
		t.Fatalf("expected item to stay processed, got %s", refreshed.Status)
	}
}

func TestPublishBatchSkipsWhenNoPlatformsEnabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.SeedProcessed(t, st, platform.TikTok, "x", "/tmp/x.mp4", "/tmp/x-ready.mp4")

	registry := publish.NewRegistry(&fakePublisher{plat: platform.Instagram})
	registry.SetEnabled(platform.Instagram, false)
	stage := publish.NewStage(cfg, st, registry, &fakeNotifier{}, nil)

	published, err := stage.PublishBatch(context.Background())
	if err != nil {
		t.Fatalf("PublishBatch: %v", err)
	}
	if published != 0 {
		t.Fatalf("expected nothing dispatched, got %d", published)
	}

	// The item stays processed and eligible for a later pass.
	refreshed, err := st.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if refreshed.Status != store.StatusProcessed {
		t.Fatalf("expected item untouched, got %s", refreshed.Status)
	}
}

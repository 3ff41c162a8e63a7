package pipeline_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"petreel/internal/analytics"
	"petreel/internal/cleanup"
	"petreel/internal/collect"
	"petreel/internal/config"
	"petreel/internal/pipeline"
	"petreel/internal/platform"
	"petreel/internal/process"
	"petreel/internal/publish"
	"petreel/internal/store"
	"petreel/internal/testsupport"
)

type nopNotifier struct{}

func (nopNotifier) NotifyCollectionCompleted(context.Context, int) error           { return nil }
func (nopNotifier) NotifyPublishCompleted(context.Context, string, int, int) error { return nil }
func (nopNotifier) NotifyCleanupCompleted(context.Context, int, int64) error       { return nil }
func (nopNotifier) NotifyReport(context.Context, string) error                     { return nil }
func (nopNotifier) NotifyError(context.Context, error, string) error               { return nil }
func (nopNotifier) TestNotification(context.Context) error                         { return nil }

type stubPublisher struct {
	plat  platform.Platform
	calls int
}

func (s *stubPublisher) Platform() platform.Platform { return s.plat }

func (s *stubPublisher) Publish(context.Context, publish.Bundle) (publish.Post, error) {
	s.calls++
	return publish.Post{PostID: "post-1"}, nil
}

type stubSource struct{}

func (stubSource) Fetch(context.Context, platform.Platform, string) (store.PublicationMetrics, error) {
	return store.PublicationMetrics{Views: 1}, nil
}

func newManager(t *testing.T, cfg *config.Config, st *store.Store) (*pipeline.Manager, *stubPublisher) {
	t.Helper()

	pub := &stubPublisher{plat: platform.Instagram}
	stages := pipeline.Stages{
		Collect:  collect.NewStage(cfg, st, nopNotifier{}, nil),
		Process:  process.NewStage(cfg, st, process.NewFFmpegTranscoder("ffmpeg"), nil, nil),
		Publish:  publish.NewStage(cfg, st, publish.NewRegistry(pub), nopNotifier{}, nil),
		Metrics:  analytics.NewStage(cfg, st, stubSource{}, nil),
		Reporter: analytics.NewReporter(st, nopNotifier{}, nil),
		Cleanup:  cleanup.NewStage(cfg, nopNotifier{}, nil),
	}
	return pipeline.NewWithStages(cfg, st, nopNotifier{}, nil, stages), pub
}

func TestStartRegistersStandingSchedule(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPublishHours(8, 14, 20))
	st := testsupport.MustOpenStore(t, cfg)
	manager, _ := newManager(t, cfg, st)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	jobs := manager.Jobs()
	want := []string{"cleanup", "collect", "metrics", "process", "publish-0800", "publish-1400", "publish-2000", "report"}
	if len(jobs) != len(want) {
		t.Fatalf("expected %v, got %v", want, jobs)
	}
	for i, name := range want {
		if jobs[i] != name {
			t.Fatalf("expected %v, got %v", want, jobs)
		}
	}
}

func TestStartRestoresActiveCampaigns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	campaign, err := st.CreateCampaign(context.Background(), store.NewCampaign{
		Name:        "launch",
		PostsPerDay: 2,
		ActiveHours: []int{9, 15},
	})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	manager, _ := newManager(t, cfg, st)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	slots := 0
	for _, name := range manager.Jobs() {
		if strings.HasPrefix(name, "campaign-") {
			slots++
		}
	}
	if slots != 2 {
		t.Fatalf("expected 2 restored campaign slots, got %d (jobs %v)", slots, manager.Jobs())
	}

	if err := manager.PauseCampaign(context.Background(), campaign.ID); err != nil {
		t.Fatalf("PauseCampaign: %v", err)
	}
	for _, name := range manager.Jobs() {
		if strings.HasPrefix(name, "campaign-") {
			t.Fatalf("expected campaign slots removed, got %v", manager.Jobs())
		}
	}

	paused, err := st.GetCampaign(context.Background(), campaign.ID)
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if paused.Active {
		t.Fatal("expected campaign marked inactive")
	}
}

func TestActivateCampaignRegistersSlots(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	campaign, err := st.CreateCampaign(context.Background(), store.NewCampaign{
		Name:        "relaunch",
		PostsPerDay: 1,
		ActiveHours: []int{11},
	})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if err := st.SetCampaignActive(context.Background(), campaign.ID, false); err != nil {
		t.Fatalf("SetCampaignActive: %v", err)
	}

	manager, _ := newManager(t, cfg, st)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	if err := manager.ActivateCampaign(context.Background(), campaign.ID); err != nil {
		t.Fatalf("ActivateCampaign: %v", err)
	}

	found := false
	for _, name := range manager.Jobs() {
		if strings.HasPrefix(name, "campaign-") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected campaign slot registered, got %v", manager.Jobs())
	}
}

func TestAdminRunPublishAndToggle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedProcessed(t, st, platform.TikTok, "vid", "/tmp/raw.mp4", "/tmp/ready.mp4")

	manager, pub := newManager(t, cfg, st)

	published, err := manager.RunPublish(context.Background())
	if err != nil {
		t.Fatalf("RunPublish: %v", err)
	}
	if published != 1 || pub.calls != 1 {
		t.Fatalf("expected one dispatch, got published=%d calls=%d", published, pub.calls)
	}

	// Disabled platforms drop out of the fan-out.
	manager.SetPublisherEnabled(platform.Instagram, false)
	testsupport.SeedProcessed(t, st, platform.TikTok, "vid2", "/tmp/raw2.mp4", "/tmp/ready2.mp4")
	published, err = manager.RunPublish(context.Background())
	if err != nil {
		t.Fatalf("RunPublish: %v", err)
	}
	if published != 0 || pub.calls != 1 {
		t.Fatalf("expected no dispatch with platform disabled, got published=%d calls=%d", published, pub.calls)
	}

	health, err := manager.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Published != 1 || health.Processed != 1 {
		t.Fatalf("unexpected health summary %+v", health)
	}

	report, err := manager.Report(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.Totals.Publications != 1 {
		t.Fatalf("expected one publication in report, got %d", report.Totals.Publications)
	}
}

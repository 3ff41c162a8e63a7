package daemon_test

import (
	"context"
	"testing"

	"petreel/internal/analytics"
	"petreel/internal/cleanup"
	"petreel/internal/collect"
	"petreel/internal/config"
	"petreel/internal/daemon"
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

type nopPublisher struct{}

func (nopPublisher) Platform() platform.Platform { return platform.Instagram }
func (nopPublisher) Publish(context.Context, publish.Bundle) (publish.Post, error) {
	return publish.Post{PostID: "x"}, nil
}

type nopSource struct{}

func (nopSource) Fetch(context.Context, platform.Platform, string) (store.PublicationMetrics, error) {
	return store.PublicationMetrics{}, nil
}

func newManager(t *testing.T, cfg *config.Config, st *store.Store) *pipeline.Manager {
	t.Helper()
	stages := pipeline.Stages{
		Collect:  collect.NewStage(cfg, st, nopNotifier{}, nil),
		Process:  process.NewStage(cfg, st, process.NewFFmpegTranscoder("ffmpeg"), nil, nil),
		Publish:  publish.NewStage(cfg, st, publish.NewRegistry(nopPublisher{}), nopNotifier{}, nil),
		Metrics:  analytics.NewStage(cfg, st, nopSource{}, nil),
		Reporter: analytics.NewReporter(st, nopNotifier{}, nil),
		Cleanup:  cleanup.NewStage(cfg, nopNotifier{}, nil),
	}
	return pipeline.NewWithStages(cfg, st, nopNotifier{}, nil, stages)
}

func TestDaemonEnforcesSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	first := daemon.New(cfg, newManager(t, cfg, st), nil)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer func() {
		first.Stop()
		_ = first.Close()
	}()

	second := daemon.New(cfg, newManager(t, cfg, st), nil)
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		_ = second.Close()
		t.Fatal("expected second instance to fail acquiring the lock")
	}
}

func TestDaemonRestartsAfterClose(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	d := daemon.New(cfg, newManager(t, cfg, st), nil)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.Stop()
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	next := daemon.New(cfg, newManager(t, cfg, st), nil)
	if err := next.Start(context.Background()); err != nil {
		t.Fatalf("restart after close failed: %v", err)
	}
	next.Stop()
	_ = next.Close()
}

package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"petreel/internal/config"
	"petreel/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyCollectionCompleted(context.Background(), 5); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	var captured struct {
		title    string
		tags     string
		priority string
		body     string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured.body = string(body)
		_ = r.Body.Close()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.Errors = true

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyError(context.Background(), errors.New("upload rejected"), "publish"); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}

	if captured.title != "Petreel - Error" {
		t.Fatalf("unexpected title %q", captured.title)
	}
	if captured.body != "Error with publish: upload rejected" {
		t.Fatalf("unexpected message %q", captured.body)
	}
	if captured.tags != "petreel,error,alert" {
		t.Fatalf("unexpected tags %q", captured.tags)
	}
	if captured.priority != "high" {
		t.Fatalf("unexpected priority %q", captured.priority)
	}
}

func TestNtfyServiceHonorsToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Collection = false
	cfg.Notifications.Cleanup = false
	cfg.Notifications.Reports = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyCollectionCompleted(context.Background(), 3); err != nil {
		t.Fatalf("expected no error for disabled event, got %v", err)
	}
	if err := svc.NotifyCleanupCompleted(context.Background(), 10, 1<<20); err != nil {
		t.Fatalf("expected no error for disabled event, got %v", err)
	}
	if err := svc.NotifyReport(context.Background(), "totals"); err != nil {
		t.Fatalf("expected no error for disabled event, got %v", err)
	}
}

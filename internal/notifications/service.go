package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"petreel/internal/config"
)

const userAgent = "Petreel-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyCollectionCompleted(ctx context.Context, collected int) error
	NotifyPublishCompleted(ctx context.Context, title string, succeeded, failed int) error
	NotifyCleanupCompleted(ctx context.Context, files int, bytes int64) error
	NotifyReport(ctx context.Context, report string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		toggles:  cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	toggles  config.Notifications
}

func (n *ntfyService) NotifyCollectionCompleted(ctx context.Context, collected int) error {
	if !n.toggles.Collection {
		return nil
	}
	data := payload{
		title:   "Petreel - Collection Complete",
		message: fmt.Sprintf("Collected %d new videos", collected),
		tags:    []string{"petreel", "collect", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishCompleted(ctx context.Context, title string, succeeded, failed int) error {
	if !n.toggles.Publishing {
		return nil
	}
	title = strings.TrimSpace(title)

	var message string
	if failed == 0 {
		message = fmt.Sprintf("Published to %d platforms: %s", succeeded, title)
	} else {
		message = fmt.Sprintf("Published %s: %d succeeded, %d failed", title, succeeded, failed)
	}
	data := payload{
		title:   "Petreel - Published",
		message: message,
		tags:    []string{"petreel", "publish", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCleanupCompleted(ctx context.Context, files int, bytes int64) error {
	if !n.toggles.Cleanup {
		return nil
	}
	data := payload{
		title:   "Petreel - Cleanup Complete",
		message: fmt.Sprintf("Removed %d files (%s reclaimed)", files, formatBytes(bytes)),
		tags:    []string{"petreel", "cleanup", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReport(ctx context.Context, report string) error {
	if !n.toggles.Reports {
		return nil
	}
	report = strings.TrimSpace(report)
	if report == "" {
		return nil
	}
	data := payload{
		title:   "Petreel - Performance Report",
		message: report,
		tags:    []string{"petreel", "report"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.toggles.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Petreel - Error",
		message:  builder.String(),
		tags:     []string{"petreel", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Petreel - Test",
		message:  "Notification system test",
		tags:     []string{"petreel", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

type noopService struct{}

func (noopService) NotifyCollectionCompleted(context.Context, int) error             { return nil }
func (noopService) NotifyPublishCompleted(context.Context, string, int, int) error   { return nil }
func (noopService) NotifyCleanupCompleted(context.Context, int, int64) error         { return nil }
func (noopService) NotifyReport(context.Context, string) error                       { return nil }
func (noopService) NotifyError(context.Context, error, string) error                 { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }

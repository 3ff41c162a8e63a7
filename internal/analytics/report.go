package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"petreel/internal/logging"
	"petreel/internal/notifications"
	"petreel/internal/store"
)

// Reporter assembles and distributes performance summaries.
type Reporter struct {
	store    *store.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// NewReporter wires a reporter over the store.
func NewReporter(st *store.Store, notifier notifications.Service, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reporter{
		store:    st,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "report"),
	}
}

// Generate builds the performance report covering the given window.
func (r *Reporter) Generate(ctx context.Context, window time.Duration) (*store.PerformanceReport, error) {
	return r.store.Report(ctx, time.Now().Add(-window))
}

// Send generates the report and pushes the rendered summary through the
// notifier.
func (r *Reporter) Send(ctx context.Context, window time.Duration) error {
	report, err := r.Generate(ctx, window)
	if err != nil {
		return err
	}
	if err := r.notifier.NotifyReport(ctx, Render(report)); err != nil {
		return err
	}
	r.logger.Info("performance report sent",
		logging.Int64("publications", report.Totals.Publications),
		logging.Int64("views", report.Totals.Views))
	return nil
}

// Render formats a report as plain text suitable for push notifications.
func Render(report *store.PerformanceReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Publications: %d\n", report.Totals.Publications)
	fmt.Fprintf(&b, "Views: %d  Likes: %d  Comments: %d  Shares: %d\n",
		report.Totals.Views, report.Totals.Likes, report.Totals.Comments, report.Totals.Shares)

	if len(report.Platforms) > 0 {
		b.WriteString("\nBy platform:\n")
		for _, stats := range report.Platforms {
			fmt.Fprintf(&b, "  %s: %d posts, %d views, %.1f%% engagement\n",
				stats.Platform, stats.Posts, stats.Views, stats.AvgEngagement)
		}
	}

	if len(report.TopPosts) > 0 {
		b.WriteString("\nTop posts:\n")
		for i, post := range report.TopPosts {
			fmt.Fprintf(&b, "  %d. [%s] %s (%d views, %.1f%% engagement)\n",
				i+1, post.Platform, post.PlatformPostID, post.Views, post.EngagementRate)
		}
	}
	return strings.TrimSpace(b.String())
}

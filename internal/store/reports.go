package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"petreel/internal/platform"
)

// ReportTotals aggregates publication metrics over a trailing window.
type ReportTotals struct {
	Publications  int64
	Views         int64
	Likes         int64
	Comments      int64
	Shares        int64
	AvgEngagement float64
}

// PlatformStats aggregates publication metrics for one platform.
type PlatformStats struct {
	Platform      platform.Platform
	Posts         int64
	Views         int64
	AvgEngagement float64
}

// TopPost is one of the best-performing publications in a window.
type TopPost struct {
	Platform       platform.Platform
	PlatformPostID string
	PostURL        string
	Views          int64
	EngagementRate float64
}

// PerformanceReport summarizes publication performance over a trailing window.
type PerformanceReport struct {
	Since     time.Time
	Totals    ReportTotals
	Platforms []PlatformStats
	TopPosts  []TopPost
}

// Report computes aggregate publication performance for publications made
// after the since timestamp.
func (s *Store) Report(ctx context.Context, since time.Time) (*PerformanceReport, error) {
	cutoff := since.UTC().Format(time.RFC3339Nano)
	report := &PerformanceReport{Since: since.UTC()}

	totalsQuery, totalsArgs, err := sq.Select(
		"COUNT(1)",
		"COALESCE(SUM(views), 0)",
		"COALESCE(SUM(likes), 0)",
		"COALESCE(SUM(comments), 0)",
		"COALESCE(SUM(shares), 0)",
		"COALESCE(AVG(engagement_rate), 0)",
	).
		From("publications").
		Where(sq.GtOrEq{"published_at": cutoff}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build totals query: %w", err)
	}

	row := s.db.QueryRowContext(ctx, totalsQuery, totalsArgs...)
	if err := row.Scan(
		&report.Totals.Publications,
		&report.Totals.Views,
		&report.Totals.Likes,
		&report.Totals.Comments,
		&report.Totals.Shares,
		&report.Totals.AvgEngagement,
	); err != nil {
		return nil, fmt.Errorf("scan totals: %w", err)
	}

	platforms, err := s.reportPlatformStats(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	report.Platforms = platforms

	top, err := s.reportTopPosts(ctx, cutoff, 5)
	if err != nil {
		return nil, err
	}
	report.TopPosts = top

	return report, nil
}

func (s *Store) reportPlatformStats(ctx context.Context, cutoff string) ([]PlatformStats, error) {
	query, args, err := sq.Select(
		"platform",
		"COUNT(1)",
		"COALESCE(SUM(views), 0)",
		"COALESCE(AVG(engagement_rate), 0)",
	).
		From("publications").
		Where(sq.GtOrEq{"published_at": cutoff}).
		GroupBy("platform").
		OrderBy("platform ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build platform stats query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query platform stats: %w", err)
	}
	defer rows.Close()

	var stats []PlatformStats
	for rows.Next() {
		var (
			plat string
			stat PlatformStats
		)
		if err := rows.Scan(&plat, &stat.Posts, &stat.Views, &stat.AvgEngagement); err != nil {
			return nil, fmt.Errorf("scan platform stats: %w", err)
		}
		stat.Platform = platform.Platform(plat)
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func (s *Store) reportTopPosts(ctx context.Context, cutoff string, limit int) ([]TopPost, error) {
	query, args, err := sq.Select(
		"platform",
		"COALESCE(platform_post_id, '')",
		"COALESCE(post_url, '')",
		"views",
		"engagement_rate",
	).
		From("publications").
		Where(sq.GtOrEq{"published_at": cutoff}).
		OrderBy("views DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top posts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query top posts: %w", err)
	}
	defer rows.Close()

	var posts []TopPost
	for rows.Next() {
		var (
			plat string
			post TopPost
		)
		if err := rows.Scan(&plat, &post.PlatformPostID, &post.PostURL, &post.Views, &post.EngagementRate); err != nil {
			return nil, fmt.Errorf("scan top post: %w", err)
		}
		post.Platform = platform.Platform(plat)
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"petreel/internal/platform"
)

// NewPublication describes one platform publish attempt to record.
type NewPublication struct {
	ItemID         int64
	Platform       platform.Platform
	PlatformPostID string
	PostURL        string
	Caption        string
	Status         PublicationStatus
	ErrorMessage   string
}

// InsertPublication records one platform publish attempt, success or failure.
// Failed attempts are kept for visibility and retry analysis.
func (s *Store) InsertPublication(ctx context.Context, pub NewPublication) (*Publication, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	var publishedAt any
	if pub.Status == PublicationPublished {
		publishedAt = timestamp
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO publications (
            item_id, platform, platform_post_id, post_url, caption,
            status, error_message, published_at, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pub.ItemID,
		string(pub.Platform),
		nullableString(pub.PlatformPostID),
		nullableString(pub.PostURL),
		nullableString(pub.Caption),
		string(pub.Status),
		nullableString(pub.ErrorMessage),
		publishedAt,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert publication: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetPublication(ctx, id)
}

// GetPublication fetches a publication by identifier. Returns nil when absent.
func (s *Store) GetPublication(ctx context.Context, id int64) (*Publication, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+publicationColumns+` FROM publications WHERE id = ?`, id)
	pub, err := scanPublication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get publication: %w", err)
	}
	return pub, nil
}

// PublicationsForItem returns all publish attempts recorded for a content item.
func (s *Store) PublicationsForItem(ctx context.Context, itemID int64) ([]*Publication, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+publicationColumns+` FROM publications WHERE item_id = ? ORDER BY id ASC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list publications for item: %w", err)
	}
	defer rows.Close()
	return collectPublications(rows)
}

// PublicationsForMetricsRefresh returns up to limit successfully published
// publications with a known platform post id, most recently published first.
func (s *Store) PublicationsForMetricsRefresh(ctx context.Context, limit int) ([]*Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications
        WHERE status = ? AND platform_post_id IS NOT NULL
        ORDER BY published_at DESC, id DESC`
	args := []any{string(PublicationPublished)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list publications for metrics refresh: %w", err)
	}
	defer rows.Close()
	return collectPublications(rows)
}

// UpdatePublicationMetrics commits a fresh counter snapshot. The engagement
// rate is always recomputed from the new counters; when views is zero the
// prior rate is preserved (never divide by zero).
func (s *Store) UpdatePublicationMetrics(ctx context.Context, id int64, metrics PublicationMetrics) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if rate, ok := metrics.EngagementRate(); ok {
		_, err := s.execWithRetry(
			ctx,
			`UPDATE publications
             SET views = ?, likes = ?, comments = ?, shares = ?, engagement_rate = ?, last_metrics_update = ?
             WHERE id = ?`,
			metrics.Views, metrics.Likes, metrics.Comments, metrics.Shares, rate, now, id,
		)
		if err != nil {
			return fmt.Errorf("update publication metrics: %w", err)
		}
		return nil
	}

	_, err := s.execWithRetry(
		ctx,
		`UPDATE publications
         SET views = ?, likes = ?, comments = ?, shares = ?, last_metrics_update = ?
         WHERE id = ?`,
		metrics.Views, metrics.Likes, metrics.Comments, metrics.Shares, now, id,
	)
	if err != nil {
		return fmt.Errorf("update publication metrics: %w", err)
	}
	return nil
}

func collectPublications(rows *sql.Rows) ([]*Publication, error) {
	var pubs []*Publication
	for rows.Next() {
		pub, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		pubs = append(pubs, pub)
	}
	return pubs, rows.Err()
}

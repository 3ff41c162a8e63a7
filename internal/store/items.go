package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"petreel/internal/platform"
)

// ErrInvalidTransition indicates a state change that would regress an item's
// lifecycle. Items only move forward: collected → processed → published, with
// processing_error as a terminal-but-requeueable branch off collected.
var ErrInvalidTransition = errors.New("invalid item state transition")

// NewCollectedItem describes a video to insert in the collected state.
type NewCollectedItem struct {
	SourcePlatform platform.Platform
	SourceID       string
	SourceURL      string
	Title          string
	Author         string
	Hashtags       []string
	Views          int64
	Likes          int64
	LocalPath      string
}

// InsertCollected persists a newly collected video. Inserting the same
// (source_platform, source_id) twice returns ErrDuplicate and leaves the
// store unchanged.
func (s *Store) InsertCollected(ctx context.Context, item NewCollectedItem) (*ContentItem, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO content_items (
            source_platform, source_id, source_url, title, author,
            hashtags_json, views, likes, status, local_path,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(item.SourcePlatform),
		item.SourceID,
		nullableString(item.SourceURL),
		nullableString(item.Title),
		nullableString(item.Author),
		encodeStringList(item.Hashtags),
		item.Views,
		item.Likes,
		StatusCollected,
		nullableString(item.LocalPath),
		timestamp,
		timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicate, item.SourcePlatform, item.SourceID)
		}
		return nil, fmt.Errorf("insert collected item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetItem(ctx, id)
}

// GetItem fetches a content item by identifier. Returns nil when absent.
func (s *Store) GetItem(ctx context.Context, id int64) (*ContentItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM content_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// FindBySource returns the item matching a (platform, source id) pair, or nil.
func (s *Store) FindBySource(ctx context.Context, plat platform.Platform, sourceID string) (*ContentItem, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM content_items WHERE source_platform = ? AND source_id = ?`,
		string(plat),
		sourceID,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by source: %w", err)
	}
	return item, nil
}

// ItemsInStatus returns up to limit items in the given state ordered by id so
// repeated batch runs claim items deterministically.
func (s *Store) ItemsInStatus(ctx context.Context, status ItemStatus, limit int) ([]*ContentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM content_items WHERE status = ? ORDER BY id ASC`
	args := []any{string(status)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items in status %s: %w", status, err)
	}
	defer rows.Close()

	var items []*ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CollectedItemsForProcessing returns up to limit collected items that have
// downloaded media, ordered by id. Items without a local file are left in
// collected rather than claimed and failed.
func (s *Store) CollectedItemsForProcessing(ctx context.Context, limit int) ([]*ContentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM content_items
        WHERE status = ? AND local_path IS NOT NULL
        ORDER BY id ASC`
	args := []any{string(StatusCollected)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list collected items: %w", err)
	}
	defer rows.Close()

	var items []*ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ProcessedItemsForPublishing returns up to limit processed items with an
// output asset, most recently processed first.
func (s *Store) ProcessedItemsForPublishing(ctx context.Context, limit int) ([]*ContentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM content_items
        WHERE status = ? AND processed_path IS NOT NULL
        ORDER BY processed_at DESC, id DESC`
	args := []any{string(StatusProcessed)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list processed items: %w", err)
	}
	defer rows.Close()

	var items []*ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkProcessed transitions a collected item to processed, recording the
// output asset and stamping processed_at exactly once.
func (s *Store) MarkProcessed(ctx context.Context, id int64, processedPath string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET status = ?, processed_path = ?, processed_at = ?, updated_at = ?, error_message = NULL
         WHERE id = ? AND status = ?`,
		StatusProcessed, processedPath, now, now, id, StatusCollected,
	)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return transitionResult(res, id, StatusProcessed)
}

// MarkProcessingError transitions a collected item to processing_error with
// the failure message. The item stays there until explicitly requeued.
func (s *Store) MarkProcessingError(ctx context.Context, id int64, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET status = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusProcessingError, nullableString(message), now, id, StatusCollected,
	)
	if err != nil {
		return fmt.Errorf("mark processing error: %w", err)
	}
	return transitionResult(res, id, StatusProcessingError)
}

// MarkPublished transitions a processed item to published and stamps
// published_at exactly once. "Published" means the fan-out was dispatched,
// not that every platform succeeded.
func (s *Store) MarkPublished(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET status = ?, published_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusPublished, now, now, id, StatusProcessed,
	)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return transitionResult(res, id, StatusPublished)
}

// RequeueForProcessing moves a processing_error item back to collected. This
// is the only backwards transition and requires an explicit administrative
// request.
func (s *Store) RequeueForProcessing(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET status = ?, error_message = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusCollected, now, id, StatusProcessingError,
	)
	if err != nil {
		return fmt.Errorf("requeue for processing: %w", err)
	}
	return transitionResult(res, id, StatusCollected)
}

// Health returns aggregated item counts per lifecycle state.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM content_items GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("health summary: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch ItemStatus(status) {
		case StatusCollected:
			summary.Collected = count
		case StatusProcessingError:
			summary.ProcessingError = count
		case StatusProcessed:
			summary.Processed = count
		case StatusPublished:
			summary.Published = count
		}
	}
	return summary, rows.Err()
}

func transitionResult(res sql.Result, id int64, target ItemStatus) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: item %d cannot move to %s", ErrInvalidTransition, id, target)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// NewCampaign describes a campaign to create.
type NewCampaign struct {
	Name             string
	Description      string
	TargetHashtags   []string
	CTAText          string
	WatermarkEnabled bool
	PostsPerDay      int
	ActiveHours      []int
}

// CreateCampaign inserts an active campaign.
func (s *Store) CreateCampaign(ctx context.Context, campaign NewCampaign) (*Campaign, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	postsPerDay := campaign.PostsPerDay
	if postsPerDay <= 0 {
		postsPerDay = 3
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO campaigns (
            name, description, target_hashtags_json, cta_text,
            watermark_enabled, active, posts_per_day, active_hours_json,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?, ?)`,
		campaign.Name,
		nullableString(campaign.Description),
		encodeStringList(campaign.TargetHashtags),
		nullableString(campaign.CTAText),
		boolToInt(campaign.WatermarkEnabled),
		postsPerDay,
		encodeIntList(campaign.ActiveHours),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert campaign: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCampaign(ctx, id)
}

// GetCampaign fetches a campaign by identifier. Returns nil when absent.
func (s *Store) GetCampaign(ctx context.Context, id int64) (*Campaign, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	campaign, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// UpdateCampaign persists campaign configuration changes.
func (s *Store) UpdateCampaign(ctx context.Context, campaign *Campaign) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE campaigns
         SET name = ?, description = ?, target_hashtags_json = ?, cta_text = ?,
             watermark_enabled = ?, active = ?, posts_per_day = ?, active_hours_json = ?,
             updated_at = ?
         WHERE id = ?`,
		campaign.Name,
		nullableString(campaign.Description),
		encodeStringList(campaign.TargetHashtags),
		nullableString(campaign.CTAText),
		boolToInt(campaign.WatermarkEnabled),
		boolToInt(campaign.Active),
		campaign.PostsPerDay,
		encodeIntList(campaign.ActiveHours),
		now,
		campaign.ID,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return nil
}

// SetCampaignActive toggles a campaign's active flag.
func (s *Store) SetCampaignActive(ctx context.Context, id int64, active bool) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE campaigns SET active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), now, id,
	)
	if err != nil {
		return fmt.Errorf("set campaign active: %w", err)
	}
	return nil
}

// Campaigns returns every campaign ordered by identifier.
func (s *Store) Campaigns(ctx context.Context) ([]*Campaign, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+campaignColumns+` FROM campaigns ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}

// ActiveCampaigns returns all campaigns currently marked active.
func (s *Store) ActiveCampaigns(ctx context.Context) ([]*Campaign, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE active = 1 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"petreel/internal/platform"
)

const itemColumns = "id, source_platform, source_id, source_url, title, author, hashtags_json, views, likes, status, local_path, processed_path, error_message, created_at, updated_at, processed_at, published_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*ContentItem, error) {
	var (
		id           int64
		sourcePlat   string
		sourceID     string
		sourceURL    sql.NullString
		title        sql.NullString
		author       sql.NullString
		hashtags     sql.NullString
		views        sql.NullInt64
		likes        sql.NullInt64
		statusStr    string
		localPath    sql.NullString
		processed    sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		processedRaw sql.NullString
		publishedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePlat,
		&sourceID,
		&sourceURL,
		&title,
		&author,
		&hashtags,
		&views,
		&likes,
		&statusStr,
		&localPath,
		&processed,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&processedRaw,
		&publishedRaw,
	); err != nil {
		return nil, err
	}

	item := &ContentItem{
		ID:             id,
		SourcePlatform: platform.Platform(sourcePlat),
		SourceID:       sourceID,
		SourceURL:      sourceURL.String,
		Title:          title.String,
		Author:         author.String,
		Views:          views.Int64,
		Likes:          likes.Int64,
		Status:         ItemStatus(statusStr),
		LocalPath:      localPath.String,
		ProcessedPath:  processed.String,
		ErrorMessage:   errorMessage.String,
	}
	item.Hashtags = decodeStringList(hashtags.String)

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	item.ProcessedAt = parseNullableTime(processedRaw)
	item.PublishedAt = parseNullableTime(publishedRaw)
	return item, nil
}

const publicationColumns = "id, item_id, platform, platform_post_id, post_url, caption, views, likes, comments, shares, engagement_rate, status, error_message, published_at, last_metrics_update, created_at"

func scanPublication(scanner interface{ Scan(dest ...any) error }) (*Publication, error) {
	var (
		id             int64
		itemID         int64
		plat           string
		postID         sql.NullString
		postURL        sql.NullString
		caption        sql.NullString
		views          sql.NullInt64
		likes          sql.NullInt64
		comments       sql.NullInt64
		shares         sql.NullInt64
		engagementRate sql.NullFloat64
		statusStr      string
		errorMessage   sql.NullString
		publishedRaw   sql.NullString
		metricsRaw     sql.NullString
		createdRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&itemID,
		&plat,
		&postID,
		&postURL,
		&caption,
		&views,
		&likes,
		&comments,
		&shares,
		&engagementRate,
		&statusStr,
		&errorMessage,
		&publishedRaw,
		&metricsRaw,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	pub := &Publication{
		ID:             id,
		ItemID:         itemID,
		Platform:       platform.Platform(plat),
		PlatformPostID: postID.String,
		PostURL:        postURL.String,
		Caption:        caption.String,
		Views:          views.Int64,
		Likes:          likes.Int64,
		Comments:       comments.Int64,
		Shares:         shares.Int64,
		EngagementRate: engagementRate.Float64,
		Status:         PublicationStatus(statusStr),
		ErrorMessage:   errorMessage.String,
	}
	pub.PublishedAt = parseNullableTime(publishedRaw)
	pub.LastMetricsUpdate = parseNullableTime(metricsRaw)
	if created, err := parseTimeString(createdRaw.String); err == nil {
		pub.CreatedAt = created
	}
	return pub, nil
}

const campaignColumns = "id, name, description, target_hashtags_json, cta_text, watermark_enabled, active, posts_per_day, active_hours_json, created_at, updated_at"

func scanCampaign(scanner interface{ Scan(dest ...any) error }) (*Campaign, error) {
	var (
		id          int64
		name        string
		description sql.NullString
		hashtags    sql.NullString
		ctaText     sql.NullString
		watermark   sql.NullInt64
		active      sql.NullInt64
		postsPerDay sql.NullInt64
		activeHours sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&name,
		&description,
		&hashtags,
		&ctaText,
		&watermark,
		&active,
		&postsPerDay,
		&activeHours,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	campaign := &Campaign{
		ID:               id,
		Name:             name,
		Description:      description.String,
		TargetHashtags:   decodeStringList(hashtags.String),
		CTAText:          ctaText.String,
		WatermarkEnabled: watermark.Int64 != 0,
		Active:           active.Int64 != 0,
		PostsPerDay:      int(postsPerDay.Int64),
		ActiveHours:      decodeIntList(activeHours.String),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		campaign.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		campaign.UpdatedAt = updated
	}
	return campaign, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseNullableTime(raw sql.NullString) *time.Time {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	parsed, err := parseTimeString(raw.String)
	if err != nil {
		return nil
	}
	return &parsed
}

func encodeStringList(values []string) any {
	if len(values) == 0 {
		return nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return string(encoded)
}

func decodeStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

func encodeIntList(values []int) any {
	if len(values) == 0 {
		return nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return string(encoded)
}

func decodeIntList(raw string) []int {
	if raw == "" {
		return nil
	}
	var values []int
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

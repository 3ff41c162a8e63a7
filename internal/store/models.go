package store

import (
	"strings"
	"time"

	"petreel/internal/platform"
)

// ItemStatus represents the lifecycle of a content item.
type ItemStatus string

const (
	StatusCollected       ItemStatus = "collected"
	StatusProcessingError ItemStatus = "processing_error"
	StatusProcessed       ItemStatus = "processed"
	StatusPublished       ItemStatus = "published"
)

var allItemStatuses = []ItemStatus{
	StatusCollected,
	StatusProcessingError,
	StatusProcessed,
	StatusPublished,
}

// AllItemStatuses returns the ordered list of known item statuses.
func AllItemStatuses() []ItemStatus {
	cp := make([]ItemStatus, len(allItemStatuses))
	copy(cp, allItemStatuses)
	return cp
}

// ParseItemStatus converts a string into a known ItemStatus.
func ParseItemStatus(value string) (ItemStatus, bool) {
	normalized := ItemStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allItemStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// ContentItem represents a collected video persisted in SQLite.
//
// Title, Author, Hashtags, Views, and Likes are a snapshot captured at
// collection time; they are never refreshed afterwards.
type ContentItem struct {
	ID             int64
	SourcePlatform platform.Platform
	SourceID       string
	SourceURL      string
	Title          string
	Author         string
	Hashtags       []string
	Views          int64
	Likes          int64
	Status         ItemStatus
	LocalPath      string
	ProcessedPath  string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ProcessedAt    *time.Time
	PublishedAt    *time.Time
}

// PublicationStatus represents the outcome of one platform publish attempt.
type PublicationStatus string

const (
	PublicationPending   PublicationStatus = "pending"
	PublicationPublished PublicationStatus = "published"
	PublicationFailed    PublicationStatus = "failed"
)

// Publication represents one platform-specific publish attempt for a content
// item, including its live metrics snapshot.
type Publication struct {
	ID                int64
	ItemID            int64
	Platform          platform.Platform
	PlatformPostID    string
	PostURL           string
	Caption           string
	Views             int64
	Likes             int64
	Comments          int64
	Shares            int64
	EngagementRate    float64
	Status            PublicationStatus
	ErrorMessage      string
	PublishedAt       *time.Time
	LastMetricsUpdate *time.Time
	CreatedAt         time.Time
}

// PublicationMetrics carries the counter snapshot fetched from a platform.
type PublicationMetrics struct {
	Views    int64
	Likes    int64
	Comments int64
	Shares   int64
}

// EngagementRate derives the engagement percentage from the counters.
// Returns ok=false when views is zero; callers must keep the prior value.
func (m PublicationMetrics) EngagementRate() (float64, bool) {
	if m.Views <= 0 {
		return 0, false
	}
	total := float64(m.Likes + m.Comments + m.Shares)
	return total / float64(m.Views) * 100, true
}

// Campaign is a named configuration bundle that parameterizes collection and
// publishing runs. The pipeline stages read campaigns but never mutate them.
type Campaign struct {
	ID               int64
	Name             string
	Description      string
	TargetHashtags   []string
	CTAText          string
	WatermarkEnabled bool
	Active           bool
	PostsPerDay      int
	ActiveHours      []int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HealthSummary describes aggregated item counts per lifecycle state.
type HealthSummary struct {
	Total           int
	Collected       int
	ProcessingError int
	Processed       int
	Published       int
}

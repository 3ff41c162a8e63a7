package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"petreel/internal/config"
	"petreel/internal/platform"
	"petreel/internal/services"
	"petreel/internal/store"
)

// Source fetches current engagement counters for a published post.
type Source interface {
	Fetch(ctx context.Context, plat platform.Platform, postID string) (store.PublicationMetrics, error)
}

const (
	defaultGraphAPIBase   = "https://graph.facebook.com/v19.0"
	defaultYouTubeAPIBase = "https://www.googleapis.com/youtube/v3"
	defaultTikTokAPIBase  = "https://open.tiktokapis.com/v2"
)

// APISource reads metrics from the platforms' public APIs using the publish
// credentials. Platforms without credentials report ErrConfiguration and are
// skipped by the refresh stage.
type APISource struct {
	cfg     *config.Config
	client  *http.Client
	limiter *rate.Limiter

	graphBase   string
	youtubeBase string
	tiktokBase  string
}

// NewAPISource builds a metrics source over the publish credentials.
func NewAPISource(cfg *config.Config) *APISource {
	timeout := time.Duration(cfg.Collect.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APISource{
		cfg:         cfg,
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Every(time.Second), 2),
		graphBase:   defaultGraphAPIBase,
		youtubeBase: defaultYouTubeAPIBase,
		tiktokBase:  defaultTikTokAPIBase,
	}
}

// Fetch dispatches to the platform-specific endpoint.
func (s *APISource) Fetch(ctx context.Context, plat platform.Platform, postID string) (store.PublicationMetrics, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return store.PublicationMetrics{}, services.Wrap(services.ErrTimeout, "metrics", "fetch", "rate limit wait", err)
	}

	switch plat {
	case platform.Instagram:
		return s.fetchGraphInsights(ctx, postID, s.cfg.Publish.Instagram)
	case platform.Facebook:
		return s.fetchGraphInsights(ctx, postID, s.cfg.Publish.Facebook)
	case platform.YouTube:
		return s.fetchYouTubeStatistics(ctx, postID)
	case platform.TikTok:
		return s.fetchTikTokMetrics(ctx, postID)
	default:
		return store.PublicationMetrics{}, services.Wrap(services.ErrValidation, "metrics", "fetch",
			fmt.Sprintf("unsupported platform %s", plat), nil)
	}
}

func (s *APISource) fetchGraphInsights(ctx context.Context, postID string, creds config.PlatformCredentials) (store.PublicationMetrics, error) {
	token := strings.TrimSpace(creds.AccessToken)
	if !creds.Enabled || token == "" {
		return store.PublicationMetrics{}, services.Wrap(services.ErrConfiguration, "metrics", "graph", "credentials not configured", nil)
	}

	query := url.Values{}
	query.Set("fields", "video_views,likes,comments,shares")
	query.Set("access_token", token)
	target := fmt.Sprintf("%s/%s?%s", s.graphBase, url.PathEscape(postID), query.Encode())

	var payload struct {
		VideoViews int64 `json:"video_views"`
		Likes      int64 `json:"likes"`
		Comments   int64 `json:"comments"`
		Shares     int64 `json:"shares"`
	}
	if err := s.getJSON(ctx, target, nil, &payload); err != nil {
		return store.PublicationMetrics{}, err
	}
	return store.PublicationMetrics{
		Views:    payload.VideoViews,
		Likes:    payload.Likes,
		Comments: payload.Comments,
		Shares:   payload.Shares,
	}, nil
}

func (s *APISource) fetchYouTubeStatistics(ctx context.Context, postID string) (store.PublicationMetrics, error) {
	apiKey := strings.TrimSpace(s.cfg.Collect.YouTubeAPIKey)
	if apiKey == "" {
		return store.PublicationMetrics{}, services.Wrap(services.ErrConfiguration, "metrics", "youtube", "api key not configured", nil)
	}

	query := url.Values{}
	query.Set("part", "statistics")
	query.Set("id", postID)
	query.Set("key", apiKey)
	target := fmt.Sprintf("%s/videos?%s", s.youtubeBase, query.Encode())

	var payload struct {
		Items []struct {
			Statistics struct {
				ViewCount    string `json:"viewCount"`
				LikeCount    string `json:"likeCount"`
				CommentCount string `json:"commentCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := s.getJSON(ctx, target, nil, &payload); err != nil {
		return store.PublicationMetrics{}, err
	}
	if len(payload.Items) == 0 {
		return store.PublicationMetrics{}, services.Wrap(services.ErrNotFound, "metrics", "youtube",
			fmt.Sprintf("video %s not found", postID), nil)
	}

	stats := payload.Items[0].Statistics
	views, _ := strconv.ParseInt(stats.ViewCount, 10, 64)
	likes, _ := strconv.ParseInt(stats.LikeCount, 10, 64)
	comments, _ := strconv.ParseInt(stats.CommentCount, 10, 64)
	return store.PublicationMetrics{Views: views, Likes: likes, Comments: comments}, nil
}

func (s *APISource) fetchTikTokMetrics(ctx context.Context, postID string) (store.PublicationMetrics, error) {
	creds := s.cfg.Publish.TikTok
	token := strings.TrimSpace(creds.AccessToken)
	if !creds.Enabled || token == "" {
		return store.PublicationMetrics{}, services.Wrap(services.ErrConfiguration, "metrics", "tiktok", "credentials not configured", nil)
	}

	query := url.Values{}
	query.Set("fields", "view_count,like_count,comment_count,share_count")
	query.Set("video_id", postID)
	target := fmt.Sprintf("%s/video/query/?%s", s.tiktokBase, query.Encode())

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)

	var payload struct {
		Data struct {
			ViewCount    int64 `json:"view_count"`
			LikeCount    int64 `json:"like_count"`
			CommentCount int64 `json:"comment_count"`
			ShareCount   int64 `json:"share_count"`
		} `json:"data"`
	}
	if err := s.getJSON(ctx, target, headers, &payload); err != nil {
		return store.PublicationMetrics{}, err
	}
	return store.PublicationMetrics{
		Views:    payload.Data.ViewCount,
		Likes:    payload.Data.LikeCount,
		Comments: payload.Data.CommentCount,
		Shares:   payload.Data.ShareCount,
	}, nil
}

func (s *APISource) getJSON(ctx context.Context, target string, headers http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "metrics", "fetch", "build request", err)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "metrics", "fetch", "api request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, "metrics", "fetch", "post no longer exists", nil)
	}
	if resp.StatusCode >= 300 {
		return services.Wrap(services.ErrTransient, "metrics", "fetch", fmt.Sprintf("api returned %d", resp.StatusCode), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrValidation, "metrics", "fetch", "decode response", err)
	}
	return nil
}

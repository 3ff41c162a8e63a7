package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"petreel/internal/config"
	"petreel/internal/platform"
	"petreel/internal/services"
	"petreel/internal/textutil"
)

const defaultYouTubeAPIBase = "https://www.googleapis.com/youtube/v3"

// commandContext is stubbed in tests to avoid invoking the real downloader.
var commandContext = exec.CommandContext

// YouTubeCollector discovers trending Shorts via the YouTube Data API and
// downloads them with yt-dlp.
type YouTubeCollector struct {
	apiKey  string
	apiBase string
	binary  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewYouTubeCollector builds a collector from the configured API key. The
// collector reports ErrConfiguration from Search when no key is set.
func NewYouTubeCollector(cfg *config.Config) *YouTubeCollector {
	timeout := time.Duration(cfg.Collect.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YouTubeCollector{
		apiKey:  strings.TrimSpace(cfg.Collect.YouTubeAPIKey),
		apiBase: defaultYouTubeAPIBase,
		binary:  "yt-dlp",
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

func (c *YouTubeCollector) Platform() platform.Platform { return platform.YouTube }

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Search queries the Data API for short videos matching each hashtag, most
// viewed first, and enriches the hits with view and like counts.
func (c *YouTubeCollector) Search(ctx context.Context, hashtags []string, limit int) ([]VideoMetadata, error) {
	if c.apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "collect", "youtube", "api key not configured", nil)
	}
	if limit <= 0 {
		return nil, nil
	}

	results := make([]VideoMetadata, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, hashtag := range hashtags {
		if len(results) >= limit {
			break
		}
		videos, err := c.searchHashtag(ctx, hashtag, limit-len(results))
		if err != nil {
			return nil, err
		}
		for _, video := range videos {
			if _, dup := seen[video.SourceID]; dup {
				continue
			}
			seen[video.SourceID] = struct{}{}
			results = append(results, video)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (c *YouTubeCollector) searchHashtag(ctx context.Context, hashtag string, limit int) ([]VideoMetadata, error) {
	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("q", hashtag)
	query.Set("type", "video")
	query.Set("videoDuration", "short")
	query.Set("order", "viewCount")
	query.Set("maxResults", strconv.Itoa(limit))
	query.Set("key", c.apiKey)

	var search youtubeSearchResponse
	if err := c.getJSON(ctx, c.apiBase+"/search?"+query.Encode(), &search); err != nil {
		return nil, err
	}
	if len(search.Items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(search.Items))
	videos := make([]VideoMetadata, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID == "" {
			continue
		}
		ids = append(ids, item.ID.VideoID)
		videos = append(videos, VideoMetadata{
			Platform:  platform.YouTube,
			SourceID:  item.ID.VideoID,
			SourceURL: "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			Title:     item.Snippet.Title,
			Author:    item.Snippet.ChannelTitle,
			Hashtags:  []string{hashtag},
		})
	}
	if len(ids) == 0 {
		return nil, nil
	}

	statsQuery := url.Values{}
	statsQuery.Set("part", "statistics")
	statsQuery.Set("id", strings.Join(ids, ","))
	statsQuery.Set("key", c.apiKey)

	var stats youtubeVideosResponse
	if err := c.getJSON(ctx, c.apiBase+"/videos?"+statsQuery.Encode(), &stats); err != nil {
		return nil, err
	}
	counts := make(map[string][2]int64, len(stats.Items))
	for _, item := range stats.Items {
		views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		likes, _ := strconv.ParseInt(item.Statistics.LikeCount, 10, 64)
		counts[item.ID] = [2]int64{views, likes}
	}
	for i := range videos {
		if stat, ok := counts[videos[i].SourceID]; ok {
			videos[i].Views = stat[0]
			videos[i].Likes = stat[1]
		}
	}
	return videos, nil
}

func (c *YouTubeCollector) getJSON(ctx context.Context, target string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return services.Wrap(services.ErrTimeout, "collect", "youtube", "rate limit wait", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "collect", "youtube", "build request", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "collect", "youtube", "api request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return services.Wrap(services.ErrTransient, "collect", "youtube", fmt.Sprintf("api returned %d", resp.StatusCode), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrValidation, "collect", "youtube", "decode response", err)
	}
	return nil
}

// Download fetches the video with yt-dlp into destDir.
func (c *YouTubeCollector) Download(ctx context.Context, video VideoMetadata, destDir string) (string, error) {
	dest := filepath.Join(destDir, downloadFileName(video))
	cmd := commandContext(ctx, c.binary, "--quiet", "--no-playlist", "-f", "mp4", "-o", dest, video.SourceURL)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = "yt-dlp failed"
		}
		return "", services.Wrap(services.ErrExternalTool, "collect", "yt-dlp", detail, err)
	}
	return dest, nil
}

func downloadFileName(video VideoMetadata) string {
	return fmt.Sprintf("%s-%s.mp4", textutil.SanitizeToken(string(video.Platform)), textutil.SanitizeToken(video.SourceID))
}

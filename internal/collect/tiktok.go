package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"petreel/internal/config"
	"petreel/internal/platform"
	"petreel/internal/services"
)

// TikTokCollector scrapes trending video listings from a TikTok mirror and
// downloads the referenced media, following HLS playlists when needed.
//
// The mirror renders one element per video carrying data attributes:
//
//	<div class="video-card" data-video-id=".." data-media-url=".."
//	     data-author=".." data-views=".." data-likes="..">
//	  <span class="title">..</span>
//	</div>
type TikTokCollector struct {
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	downloader *downloader
}

// NewTikTokCollector builds a collector against the configured mirror URL.
// Search reports ErrConfiguration when no base URL is set.
func NewTikTokCollector(cfg *config.Config) *TikTokCollector {
	timeout := time.Duration(cfg.Collect.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	return &TikTokCollector{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.Collect.TikTokBaseURL), "/"),
		client:     client,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
		downloader: newDownloader(client),
	}
}

func (c *TikTokCollector) Platform() platform.Platform { return platform.TikTok }

// Search scrapes the trending page for each hashtag and returns the most
// viewed videos first.
func (c *TikTokCollector) Search(ctx context.Context, hashtags []string, limit int) ([]VideoMetadata, error) {
	if c.baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "collect", "tiktok", "base url not configured", nil)
	}
	if limit <= 0 {
		return nil, nil
	}

	results := make([]VideoMetadata, 0, limit)
	seen := make(map[string]struct{})
	for _, hashtag := range hashtags {
		videos, err := c.scrapeHashtag(ctx, hashtag)
		if err != nil {
			return nil, err
		}
		for _, video := range videos {
			if _, dup := seen[video.SourceID]; dup {
				continue
			}
			seen[video.SourceID] = struct{}{}
			results = append(results, video)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Views > results[j].Views
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (c *TikTokCollector) scrapeHashtag(ctx context.Context, hashtag string) ([]VideoMetadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, services.Wrap(services.ErrTimeout, "collect", "tiktok", "rate limit wait", err)
	}

	tag := strings.TrimPrefix(strings.TrimSpace(hashtag), "#")
	target := fmt.Sprintf("%s/tag/%s", c.baseURL, url.PathEscape(tag))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "collect", "tiktok", "build request", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "collect", "tiktok", "fetch trending page", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, services.Wrap(services.ErrTransient, "collect", "tiktok", fmt.Sprintf("trending page returned %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "collect", "tiktok", "parse trending page", err)
	}

	var videos []VideoMetadata
	doc.Find("[data-video-id]").Each(func(_ int, sel *goquery.Selection) {
		id, ok := sel.Attr("data-video-id")
		if !ok || strings.TrimSpace(id) == "" {
			return
		}
		mediaURL, _ := sel.Attr("data-media-url")
		author, _ := sel.Attr("data-author")
		views := parseCount(sel.AttrOr("data-views", "0"))
		likes := parseCount(sel.AttrOr("data-likes", "0"))
		title := strings.TrimSpace(sel.Find(".title").First().Text())
		if title == "" {
			title = strings.TrimSpace(sel.Text())
		}

		videos = append(videos, VideoMetadata{
			Platform:  platform.TikTok,
			SourceID:  id,
			SourceURL: fmt.Sprintf("%s/video/%s", c.baseURL, id),
			Title:     title,
			Author:    author,
			Hashtags:  []string{hashtag},
			Views:     views,
			Likes:     likes,
			MediaURL:  mediaURL,
		})
	})
	return videos, nil
}

// Download fetches the scraped media URL, resolving HLS playlists to their
// best variant.
func (c *TikTokCollector) Download(ctx context.Context, video VideoMetadata, destDir string) (string, error) {
	if strings.TrimSpace(video.MediaURL) == "" {
		return "", services.Wrap(services.ErrValidation, "collect", "tiktok", "video has no media url", nil)
	}
	dest := filepath.Join(destDir, downloadFileName(video))
	if err := c.downloader.fetch(ctx, video.MediaURL, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func parseCount(value string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

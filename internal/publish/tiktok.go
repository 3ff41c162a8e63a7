package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"petreel/internal/config"
	"petreel/internal/platform"
	"petreel/internal/services"
)

const defaultTikTokAPIBase = "https://open.tiktokapis.com/v2"

// TikTokPublisher uploads clips through the TikTok Content Posting API's
// direct-post flow: initialize the post, then stream the file to the upload
// URL the API hands back.
type TikTokPublisher struct {
	accessToken string
	apiBase     string
	client      *http.Client
	limiter     *rate.Limiter
}

// NewTikTokPublisher builds a publisher from the configured credentials.
func NewTikTokPublisher(cfg *config.Config) *TikTokPublisher {
	timeout := time.Duration(cfg.Publish.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	creds := cfg.Publish.TikTok
	publisher := &TikTokPublisher{
		apiBase: defaultTikTokAPIBase,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
	if creds.Enabled {
		publisher.accessToken = strings.TrimSpace(creds.AccessToken)
	}
	return publisher
}

func (p *TikTokPublisher) Platform() platform.Platform { return platform.TikTok }

// Publish initializes a direct post and uploads the clip in one chunk.
func (p *TikTokPublisher) Publish(ctx context.Context, bundle Bundle) (Post, error) {
	if p.accessToken == "" {
		return Post{}, services.Wrap(services.ErrConfiguration, "publish", "tiktok", "credentials not configured", nil)
	}

	info, err := os.Stat(bundle.VideoPath)
	if err != nil {
		return Post{}, services.Wrap(services.ErrValidation, "publish", "tiktok", "stat video", err)
	}

	publishID, uploadURL, err := p.initPost(ctx, bundle, info.Size())
	if err != nil {
		return Post{}, err
	}
	if err := p.uploadVideo(ctx, uploadURL, bundle.VideoPath, info.Size()); err != nil {
		return Post{}, err
	}
	return Post{
		PostID:  publishID,
		PostURL: "https://www.tiktok.com/@me/video/" + publishID,
	}, nil
}

func (p *TikTokPublisher) initPost(ctx context.Context, bundle Bundle, size int64) (string, string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", "", services.Wrap(services.ErrTimeout, "publish", "tiktok", "rate limit wait", err)
	}

	payload := map[string]any{
		"post_info": map[string]any{
			"title":           bundle.Caption,
			"privacy_level":   "PUBLIC_TO_EVERYONE",
			"disable_comment": false,
		},
		"source_info": map[string]any{
			"source":            "FILE_UPLOAD",
			"video_size":        size,
			"chunk_size":        size,
			"total_chunk_count": 1,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", "", services.Wrap(services.ErrValidation, "publish", "tiktok", "encode init payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+"/post/publish/video/init/", bytes.NewReader(raw))
	if err != nil {
		return "", "", services.Wrap(services.ErrValidation, "publish", "tiktok", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", services.Wrap(services.ErrTransient, "publish", "tiktok", "init request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", "", services.Wrap(services.ErrTransient, "publish", "tiktok", fmt.Sprintf("init returned %d", resp.StatusCode), nil)
	}

	var initResp struct {
		Data struct {
			PublishID string `json:"publish_id"`
			UploadURL string `json:"upload_url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return "", "", services.Wrap(services.ErrValidation, "publish", "tiktok", "decode init response", err)
	}
	if initResp.Data.PublishID == "" || initResp.Data.UploadURL == "" {
		return "", "", services.Wrap(services.ErrTransient, "publish", "tiktok", "init returned no upload target", nil)
	}
	return initResp.Data.PublishID, initResp.Data.UploadURL, nil
}

func (p *TikTokPublisher) uploadVideo(ctx context.Context, uploadURL, videoPath string, size int64) error {
	file, err := os.Open(videoPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "publish", "tiktok", "open video", err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return services.Wrap(services.ErrValidation, "publish", "tiktok", "build upload request", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "video/mp4")
	req.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", size-1, size))

	resp, err := p.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "publish", "tiktok", "upload request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return services.Wrap(services.ErrTransient, "publish", "tiktok", fmt.Sprintf("upload returned %d", resp.StatusCode), nil)
	}
	return nil
}

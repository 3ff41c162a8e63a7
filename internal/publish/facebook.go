package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"petreel/internal/config"
	"petreel/internal/platform"
	"petreel/internal/services"
)

// FacebookPublisher uploads videos to a Facebook page via the Graph API.
type FacebookPublisher struct {
	accessToken string
	pageID      string
	apiBase     string
	client      *http.Client
	limiter     *rate.Limiter
}

// NewFacebookPublisher builds a publisher from the configured credentials.
func NewFacebookPublisher(cfg *config.Config) *FacebookPublisher {
	timeout := time.Duration(cfg.Publish.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	creds := cfg.Publish.Facebook
	publisher := &FacebookPublisher{
		apiBase: defaultGraphAPIBase,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
	if creds.Enabled {
		publisher.accessToken = strings.TrimSpace(creds.AccessToken)
		publisher.pageID = strings.TrimSpace(creds.PageID)
	}
	return publisher
}

func (p *FacebookPublisher) Platform() platform.Platform { return platform.Facebook }

// Publish uploads the clip to the page's video library.
func (p *FacebookPublisher) Publish(ctx context.Context, bundle Bundle) (Post, error) {
	if p.accessToken == "" || p.pageID == "" {
		return Post{}, services.Wrap(services.ErrConfiguration, "publish", "facebook", "credentials not configured", nil)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return Post{}, services.Wrap(services.ErrTimeout, "publish", "facebook", "rate limit wait", err)
	}

	body, contentType, err := multipartUpload(bundle.VideoPath, map[string]string{
		"description":  bundle.Caption,
		"access_token": p.accessToken,
	})
	if err != nil {
		return Post{}, services.Wrap(services.ErrValidation, "publish", "facebook", "build upload", err)
	}

	target := fmt.Sprintf("%s/%s/videos", p.apiBase, p.pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return Post{}, services.Wrap(services.ErrValidation, "publish", "facebook", "build request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(req)
	if err != nil {
		return Post{}, services.Wrap(services.ErrTransient, "publish", "facebook", "upload request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Post{}, services.Wrap(services.ErrTransient, "publish", "facebook", fmt.Sprintf("api returned %d", resp.StatusCode), nil)
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return Post{}, services.Wrap(services.ErrValidation, "publish", "facebook", "decode response", err)
	}
	if uploaded.ID == "" {
		return Post{}, services.Wrap(services.ErrTransient, "publish", "facebook", "upload returned no id", nil)
	}
	return Post{
		PostID:  uploaded.ID,
		PostURL: fmt.Sprintf("https://www.facebook.com/%s/videos/%s", p.pageID, uploaded.ID),
	}, nil
}

// multipartUpload builds a multipart body streaming the file under the
// "source" field alongside the given form fields.
func multipartUpload(videoPath string, fields map[string]string) (io.Reader, string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	part, err := writer.CreateFormFile("source", filepath.Base(videoPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

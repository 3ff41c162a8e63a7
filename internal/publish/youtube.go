package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"petreel/internal/config"
	"petreel/internal/platform"
	"petreel/internal/services"
)

const defaultYouTubeUploadBase = "https://www.googleapis.com/upload/youtube/v3"

// YouTubePublisher uploads Shorts via the YouTube Data API's multipart
// upload: a JSON snippet part followed by the video body.
type YouTubePublisher struct {
	accessToken string
	uploadBase  string
	client      *http.Client
	limiter     *rate.Limiter
}

// NewYouTubePublisher builds a publisher from the configured credentials.
func NewYouTubePublisher(cfg *config.Config) *YouTubePublisher {
	timeout := time.Duration(cfg.Publish.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	creds := cfg.Publish.YouTube
	publisher := &YouTubePublisher{
		uploadBase: defaultYouTubeUploadBase,
		client:     &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
	if creds.Enabled {
		publisher.accessToken = strings.TrimSpace(creds.AccessToken)
	}
	return publisher
}

func (p *YouTubePublisher) Platform() platform.Platform { return platform.YouTube }

// Publish uploads the clip as a public Short.
func (p *YouTubePublisher) Publish(ctx context.Context, bundle Bundle) (Post, error) {
	if p.accessToken == "" {
		return Post{}, services.Wrap(services.ErrConfiguration, "publish", "youtube", "credentials not configured", nil)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return Post{}, services.Wrap(services.ErrTimeout, "publish", "youtube", "rate limit wait", err)
	}

	body, contentType, err := buildYouTubeUpload(bundle)
	if err != nil {
		return Post{}, services.Wrap(services.ErrValidation, "publish", "youtube", "build upload", err)
	}

	query := url.Values{}
	query.Set("part", "snippet,status")
	query.Set("uploadType", "multipart")
	target := fmt.Sprintf("%s/videos?%s", p.uploadBase, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return Post{}, services.Wrap(services.ErrValidation, "publish", "youtube", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", contentType)

	resp, err := p.client.Do(req)
	if err != nil {
		return Post{}, services.Wrap(services.ErrTransient, "publish", "youtube", "upload request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Post{}, services.Wrap(services.ErrTransient, "publish", "youtube", fmt.Sprintf("api returned %d", resp.StatusCode), nil)
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return Post{}, services.Wrap(services.ErrValidation, "publish", "youtube", "decode response", err)
	}
	if uploaded.ID == "" {
		return Post{}, services.Wrap(services.ErrTransient, "publish", "youtube", "upload returned no id", nil)
	}
	return Post{
		PostID:  uploaded.ID,
		PostURL: "https://www.youtube.com/shorts/" + uploaded.ID,
	}, nil
}

// buildYouTubeUpload assembles a multipart/related body: JSON metadata first,
// video bytes second.
func buildYouTubeUpload(bundle Bundle) (io.Reader, string, error) {
	file, err := os.Open(bundle.VideoPath)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	metadata := map[string]any{
		"snippet": map[string]any{
			"title":       bundle.Title,
			"description": bundle.Caption,
			"tags":        bundle.Hashtags,
			"categoryId":  "15",
		},
		"status": map[string]any{
			"privacyStatus":           "public",
			"selfDeclaredMadeForKids": false,
		},
	}
	rawMeta, err := json.Marshal(metadata)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := metaPart.Write(rawMeta); err != nil {
		return nil, "", err
	}

	videoHeader := textproto.MIMEHeader{}
	videoHeader.Set("Content-Type", "video/mp4")
	videoPart, err := writer.CreatePart(videoHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(videoPart, file); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	contentType := fmt.Sprintf("multipart/related; boundary=%s", writer.Boundary())
	return &buf, contentType, nil
}

package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"petreel/internal/config"
	"petreel/internal/platform"
	"petreel/internal/services"
)

const defaultGraphAPIBase = "https://graph.facebook.com/v19.0"

// InstagramPublisher posts Reels through the Instagram Graph API using the
// three-step container flow: create a media container, poll until the
// container finishes server-side processing, then publish it.
type InstagramPublisher struct {
	accessToken  string
	accountID    string
	apiBase      string
	client       *http.Client
	limiter      *rate.Limiter
	pollAttempts int
	pollDelay    time.Duration
}

// NewInstagramPublisher builds a publisher from the configured credentials.
// Publish reports ErrConfiguration when the platform is disabled or
// credentials are missing.
func NewInstagramPublisher(cfg *config.Config) *InstagramPublisher {
	timeout := time.Duration(cfg.Publish.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	pollDelay := time.Duration(cfg.Publish.UploadPollDelaySeconds) * time.Second
	if pollDelay <= 0 {
		pollDelay = 10 * time.Second
	}
	pollAttempts := cfg.Publish.UploadPollAttempts
	if pollAttempts <= 0 {
		pollAttempts = 30
	}

	creds := cfg.Publish.Instagram
	publisher := &InstagramPublisher{
		apiBase:      defaultGraphAPIBase,
		client:       &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(rate.Every(time.Second), 1),
		pollAttempts: pollAttempts,
		pollDelay:    pollDelay,
	}
	if creds.Enabled {
		publisher.accessToken = strings.TrimSpace(creds.AccessToken)
		publisher.accountID = strings.TrimSpace(creds.PageID)
	}
	return publisher
}

func (p *InstagramPublisher) Platform() platform.Platform { return platform.Instagram }

// Publish uploads a Reel and returns the published media id.
func (p *InstagramPublisher) Publish(ctx context.Context, bundle Bundle) (Post, error) {
	if p.accessToken == "" || p.accountID == "" {
		return Post{}, services.Wrap(services.ErrConfiguration, "publish", "instagram", "credentials not configured", nil)
	}

	containerID, err := p.createContainer(ctx, bundle)
	if err != nil {
		return Post{}, err
	}
	if err := p.waitForContainer(ctx, containerID); err != nil {
		return Post{}, err
	}
	mediaID, err := p.publishContainer(ctx, containerID)
	if err != nil {
		return Post{}, err
	}
	return Post{
		PostID:  mediaID,
		PostURL: "https://www.instagram.com/reel/" + mediaID,
	}, nil
}

func (p *InstagramPublisher) createContainer(ctx context.Context, bundle Bundle) (string, error) {
	form := url.Values{}
	form.Set("media_type", "REELS")
	form.Set("video_url", bundle.VideoPath)
	form.Set("caption", bundle.Caption)
	form.Set("access_token", p.accessToken)

	var created struct {
		ID string `json:"id"`
	}
	if err := p.postForm(ctx, fmt.Sprintf("%s/%s/media", p.apiBase, p.accountID), form, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", services.Wrap(services.ErrTransient, "publish", "instagram", "container creation returned no id", nil)
	}
	return created.ID, nil
}

// waitForContainer polls the container status until it reports FINISHED.
// Exhausting the poll budget returns ErrTimeout; an ERROR status fails fast.
func (p *InstagramPublisher) waitForContainer(ctx context.Context, containerID string) error {
	target := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s", p.apiBase, containerID, url.QueryEscape(p.accessToken))
	for attempt := 0; attempt < p.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return services.Wrap(services.ErrTimeout, "publish", "instagram", "container poll cancelled", ctx.Err())
			case <-time.After(p.pollDelay):
			}
		}

		var status struct {
			StatusCode string `json:"status_code"`
		}
		if err := p.getJSON(ctx, target, &status); err != nil {
			return err
		}
		switch status.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR":
			return services.Wrap(services.ErrTransient, "publish", "instagram", "container processing failed", nil)
		}
	}
	return services.Wrap(services.ErrTimeout, "publish", "instagram",
		fmt.Sprintf("container not ready after %d attempts", p.pollAttempts), nil)
}

func (p *InstagramPublisher) publishContainer(ctx context.Context, containerID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", containerID)
	form.Set("access_token", p.accessToken)

	var published struct {
		ID string `json:"id"`
	}
	if err := p.postForm(ctx, fmt.Sprintf("%s/%s/media_publish", p.apiBase, p.accountID), form, &published); err != nil {
		return "", err
	}
	if published.ID == "" {
		return "", services.Wrap(services.ErrTransient, "publish", "instagram", "publish returned no media id", nil)
	}
	return published.ID, nil
}

func (p *InstagramPublisher) postForm(ctx context.Context, target string, form url.Values, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return services.Wrap(services.ErrTimeout, "publish", "instagram", "rate limit wait", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return services.Wrap(services.ErrValidation, "publish", "instagram", "build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(req, out)
}

func (p *InstagramPublisher) getJSON(ctx context.Context, target string, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return services.Wrap(services.ErrTimeout, "publish", "instagram", "rate limit wait", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "publish", "instagram", "build request", err)
	}
	return p.do(req, out)
}

func (p *InstagramPublisher) do(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "publish", "instagram", "api request", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return services.Wrap(services.ErrTransient, "publish", "instagram", fmt.Sprintf("api returned %d", resp.StatusCode), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrValidation, "publish", "instagram", "decode response", err)
	}
	return nil
}

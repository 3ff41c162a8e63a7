package collect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/grafov/m3u8"

	"petreel/internal/services"
)

// downloader fetches media files over HTTP, transparently handling both
// progressive downloads and HLS playlists.
type downloader struct {
	client *http.Client
}

func newDownloader(client *http.Client) *downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &downloader{client: client}
}

// fetch writes the media at mediaURL to destPath. HLS playlists are resolved
// to their highest-bandwidth variant and the segments concatenated in order.
func (d *downloader) fetch(ctx context.Context, mediaURL, destPath string) error {
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return services.Wrap(services.ErrValidation, "collect", "download", "parse media url", err)
	}
	if strings.HasSuffix(parsed.Path, ".m3u8") {
		return d.fetchHLS(ctx, parsed, destPath)
	}
	return d.fetchDirect(ctx, mediaURL, destPath)
}

func (d *downloader) fetchDirect(ctx context.Context, mediaURL, destPath string) error {
	body, err := d.get(ctx, mediaURL)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return services.Wrap(services.ErrTransient, "collect", "download", "stream media", err)
	}
	return out.Close()
}

func (d *downloader) fetchHLS(ctx context.Context, playlistURL *url.URL, destPath string) error {
	playlist, listType, err := d.decodePlaylist(ctx, playlistURL.String())
	if err != nil {
		return err
	}

	if listType == m3u8.MASTER {
		master := playlist.(*m3u8.MasterPlaylist)
		variant := bestVariant(master)
		if variant == nil {
			return services.Wrap(services.ErrValidation, "collect", "download", "master playlist has no variants", nil)
		}
		variantURL, err := resolveReference(playlistURL, variant.URI)
		if err != nil {
			return err
		}
		playlist, listType, err = d.decodePlaylist(ctx, variantURL.String())
		if err != nil {
			return err
		}
		if listType != m3u8.MEDIA {
			return services.Wrap(services.ErrValidation, "collect", "download", "variant did not resolve to a media playlist", nil)
		}
		playlistURL = variantURL
	}

	media, ok := playlist.(*m3u8.MediaPlaylist)
	if !ok {
		return services.Wrap(services.ErrValidation, "collect", "download", "unexpected playlist type", nil)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	for _, segment := range media.Segments {
		if segment == nil {
			continue
		}
		segmentURL, err := resolveReference(playlistURL, segment.URI)
		if err != nil {
			return err
		}
		body, err := d.get(ctx, segmentURL.String())
		if err != nil {
			return err
		}
		_, copyErr := io.Copy(out, body)
		body.Close()
		if copyErr != nil {
			return services.Wrap(services.ErrTransient, "collect", "download", "stream segment", copyErr)
		}
	}
	return out.Close()
}

func (d *downloader) decodePlaylist(ctx context.Context, playlistURL string) (m3u8.Playlist, m3u8.ListType, error) {
	body, err := d.get(ctx, playlistURL)
	if err != nil {
		return nil, 0, err
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, 4<<20))
	if err != nil {
		return nil, 0, services.Wrap(services.ErrTransient, "collect", "download", "read playlist", err)
	}
	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(raw), false)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrValidation, "collect", "download", "decode playlist", err)
	}
	return playlist, listType, nil
}

func (d *downloader) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "collect", "download", "build request", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "collect", "download", "fetch "+target, err)
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, services.Wrap(services.ErrTransient, "collect", "download", fmt.Sprintf("fetch %s returned %d", target, resp.StatusCode), nil)
	}
	return resp.Body, nil
}

func bestVariant(master *m3u8.MasterPlaylist) *m3u8.Variant {
	var best *m3u8.Variant
	for _, variant := range master.Variants {
		if variant == nil {
			continue
		}
		if best == nil || variant.Bandwidth > best.Bandwidth {
			best = variant
		}
	}
	return best
}

func resolveReference(base *url.URL, ref string) (*url.URL, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "collect", "download", "parse segment url", err)
	}
	return base.ResolveReference(parsed), nil
}

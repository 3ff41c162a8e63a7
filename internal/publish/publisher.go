package publish

import (
	"context"
	"sync"

	"petreel/internal/platform"
)

// Content is the platform-neutral description of a clip ready to publish.
type Content struct {
	VideoPath string
	Title     string
	Caption   string
	Hashtags  []string
}

// Bundle is Content optimized for one destination platform: caption and
// title clamped to the platform's limits, hashtags normalized and capped.
type Bundle struct {
	VideoPath string
	Title     string
	Caption   string
	Hashtags  []string
}

// Post identifies a successfully created platform post.
type Post struct {
	PostID  string
	PostURL string
}

// Result is the outcome of one platform publish attempt.
type Result struct {
	Platform platform.Platform
	PostID   string
	PostURL  string
	Err      error
}

// OK reports whether the attempt produced a live post.
func (r Result) OK() bool { return r.Err == nil }

// Publisher uploads a clip to one destination platform.
type Publisher interface {
	Platform() platform.Platform
	Publish(ctx context.Context, bundle Bundle) (Post, error)
}

// Registry tracks the configured publishers and their runtime enablement.
// Operators can disable a platform without restarting the daemon.
type Registry struct {
	mu         sync.RWMutex
	publishers map[platform.Platform]Publisher
	enabled    map[platform.Platform]bool
}

// NewRegistry builds a registry over the given publishers, all enabled.
func NewRegistry(publishers ...Publisher) *Registry {
	r := &Registry{
		publishers: make(map[platform.Platform]Publisher, len(publishers)),
		enabled:    make(map[platform.Platform]bool, len(publishers)),
	}
	for _, p := range publishers {
		r.publishers[p.Platform()] = p
		r.enabled[p.Platform()] = true
	}
	return r
}

// SetEnabled toggles a platform at runtime. Unknown platforms are ignored.
func (r *Registry) SetEnabled(plat platform.Platform, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.publishers[plat]; ok {
		r.enabled[plat] = enabled
	}
}

// Enabled reports whether the platform currently accepts publishes.
func (r *Registry) Enabled(plat platform.Platform) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[plat]
}

// Active returns the enabled publishers in the canonical platform order.
func (r *Registry) Active() []Publisher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]Publisher, 0, len(r.publishers))
	for _, plat := range platform.All() {
		if pub, ok := r.publishers[plat]; ok && r.enabled[plat] {
			active = append(active, pub)
		}
	}
	return active
}

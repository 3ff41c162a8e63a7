package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"petreel/internal/config"
	"petreel/internal/logging"
	"petreel/internal/notifications"
	"petreel/internal/platform"
	"petreel/internal/services"
	"petreel/internal/store"
)

// Stage fans processed clips out to every enabled platform.
type Stage struct {
	cfg      *config.Config
	store    *store.Store
	registry *Registry
	notifier notifications.Service
	logger   *slog.Logger
}

// NewStage wires a publishing stage over the given registry.
func NewStage(cfg *config.Config, st *store.Store, registry *Registry, notifier notifications.Service, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		cfg:      cfg,
		store:    st,
		registry: registry,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "publish"),
	}
}

// Registry exposes the underlying publisher registry for runtime toggling.
func (s *Stage) Registry() *Registry { return s.registry }

// PublishBatch publishes up to the configured batch of processed items.
// Every platform attempt is recorded as a Publication; the item itself moves
// to published once the fan-out has been dispatched, regardless of individual
// platform outcomes. Returns the number of items dispatched.
func (s *Stage) PublishBatch(ctx context.Context) (int, error) {
	return s.publishBatch(ctx, nil)
}

// PublishCampaignBatch publishes a batch with the campaign's content
// settings applied: the campaign call to action replaces the configured one
// and the campaign's target hashtags join each item's own.
func (s *Stage) PublishCampaignBatch(ctx context.Context, campaign *store.Campaign) (int, error) {
	return s.publishBatch(ctx, campaign)
}

func (s *Stage) publishBatch(ctx context.Context, campaign *store.Campaign) (int, error) {
	ctx = logging.WithStage(ctx, "publish")
	items, err := s.store.ProcessedItemsForPublishing(ctx, s.cfg.Publish.BatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, item := range items {
		itemCtx := services.WithItemID(ctx, item.ID)
		if err := s.publishItem(itemCtx, item, campaign); err != nil {
			logging.WithContext(itemCtx, s.logger).Warn("item publish failed", logging.Error(err))
			continue
		}
		published++
	}
	return published, nil
}

// PublishItem publishes a single processed item immediately, outside the
// scheduled batch. When platforms are given, the fan-out is restricted to
// that subset of the enabled publishers; otherwise all enabled publishers
// receive the item.
func (s *Stage) PublishItem(ctx context.Context, id int64, platforms ...platform.Platform) error {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return services.Wrap(services.ErrNotFound, "publish", "publish item",
			fmt.Sprintf("item %d does not exist", id), nil)
	}
	if item.Status != store.StatusProcessed {
		return services.Wrap(services.ErrValidation, "publish", "publish item",
			"item is not in the processed state", nil)
	}
	return s.publishItem(services.WithItemID(ctx, id), item, nil, platforms...)
}

func (s *Stage) publishItem(ctx context.Context, item *store.ContentItem, campaign *store.Campaign, platforms ...platform.Platform) error {
	publishers := s.registry.Active()
	if len(platforms) > 0 {
		publishers = filterPublishers(publishers, platforms)
	}
	if len(publishers) == 0 {
		return services.Wrap(services.ErrConfiguration, "publish", "fan out", "no platforms enabled", nil)
	}

	content := s.buildContent(item, campaign)
	results := PublishToAll(ctx, publishers, content)
	log := logging.WithContext(ctx, s.logger)

	succeeded, failed := 0, 0
	for _, result := range results {
		if result.Err != nil && services.IsNotConfigured(result.Err) {
			// Missing credentials skip the platform rather than failing it.
			log.Debug("platform not configured, skipped",
				logging.String(logging.FieldPlatform, result.Platform.String()))
			continue
		}
		if result.OK() {
			succeeded++
		} else {
			failed++
			log.Warn("platform publish failed",
				logging.String(logging.FieldPlatform, result.Platform.String()),
				logging.Error(result.Err))
		}
		if err := s.recordResult(ctx, item, content, result); err != nil {
			log.Error("failed to record publication",
				logging.String(logging.FieldPlatform, result.Platform.String()),
				logging.Error(err))
		}
	}

	if succeeded+failed == 0 {
		// Every platform was skipped; the item stays eligible for a later
		// pass once credentials exist.
		return services.Wrap(services.ErrConfiguration, "publish", "fan out",
			"no configured platforms accepted the item", nil)
	}

	// The item is considered dispatched even when platforms failed; the
	// failed attempts live on as failed publications.
	if err := s.store.MarkPublished(ctx, item.ID); err != nil {
		return err
	}
	log.Info("item published",
		logging.Int("succeeded", succeeded),
		logging.Int("failed", failed))

	if err := s.notifier.NotifyPublishCompleted(ctx, item.Title, succeeded, failed); err != nil {
		log.Warn("publish notification failed", logging.Error(err))
	}
	return nil
}

func filterPublishers(publishers []Publisher, platforms []platform.Platform) []Publisher {
	wanted := make(map[platform.Platform]bool, len(platforms))
	for _, p := range platforms {
		wanted[p] = true
	}
	filtered := make([]Publisher, 0, len(publishers))
	for _, pub := range publishers {
		if wanted[pub.Platform()] {
			filtered = append(filtered, pub)
		}
	}
	return filtered
}

func (s *Stage) recordResult(ctx context.Context, item *store.ContentItem, content Content, result Result) error {
	pub := store.NewPublication{
		ItemID:   item.ID,
		Platform: result.Platform,
		Caption:  Optimize(content, result.Platform).Caption,
	}
	if result.OK() {
		pub.Status = store.PublicationPublished
		pub.PlatformPostID = result.PostID
		pub.PostURL = result.PostURL
	} else {
		pub.Status = store.PublicationFailed
		pub.ErrorMessage = result.Err.Error()
	}
	_, err := s.store.InsertPublication(ctx, pub)
	return err
}

// buildContent assembles the platform-neutral content for an item: the title
// as caption lead, the collected hashtags, and the call to action. A campaign
// overrides the configured CTA and contributes its target hashtags.
func (s *Stage) buildContent(item *store.ContentItem, campaign *store.Campaign) Content {
	cta := strings.TrimSpace(s.cfg.Process.CTAText)
	if campaign != nil && strings.TrimSpace(campaign.CTAText) != "" {
		cta = strings.TrimSpace(campaign.CTAText)
	}

	var caption strings.Builder
	caption.WriteString(strings.TrimSpace(item.Title))
	if cta != "" {
		if caption.Len() > 0 {
			caption.WriteString("\n\n")
		}
		caption.WriteString(cta)
	}

	hashtags := item.Hashtags
	if campaign != nil && len(campaign.TargetHashtags) > 0 {
		hashtags = append(append([]string(nil), hashtags...), campaign.TargetHashtags...)
	}
	if len(hashtags) > 10 {
		hashtags = hashtags[:10]
	}

	return Content{
		VideoPath: item.ProcessedPath,
		Title:     item.Title,
		Caption:   caption.String(),
		Hashtags:  hashtags,
	}
}

package analytics

import (
	"context"
	"log/slog"

	"petreel/internal/config"
	"petreel/internal/logging"
	"petreel/internal/services"
	"petreel/internal/store"
)

// Stage refreshes engagement metrics for recently published posts.
type Stage struct {
	cfg    *config.Config
	store  *store.Store
	source Source
	logger *slog.Logger
}

// NewStage wires a metrics refresh stage over the given source.
func NewStage(cfg *config.Config, st *store.Store, source Source, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		cfg:    cfg,
		store:  st,
		source: source,
		logger: logging.NewComponentLogger(logger, "metrics"),
	}
}

// RefreshMetrics polls the platform APIs for the most recently published
// posts, newest first, up to the configured batch size. A failing post never
// aborts the batch. Returns the number of publications updated.
func (s *Stage) RefreshMetrics(ctx context.Context) (int, error) {
	ctx = logging.WithStage(ctx, "metrics")
	pubs, err := s.store.PublicationsForMetricsRefresh(ctx, s.cfg.Metrics.BatchSize)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, pub := range pubs {
		metrics, err := s.source.Fetch(ctx, pub.Platform, pub.PlatformPostID)
		if err != nil {
			if services.IsNotConfigured(err) {
				s.logger.Debug("metrics source not configured, skipping",
					logging.String(logging.FieldPlatform, pub.Platform.String()))
				continue
			}
			s.logger.Warn("metrics fetch failed",
				logging.Int64("publication_id", pub.ID),
				logging.String(logging.FieldPlatform, pub.Platform.String()),
				logging.Error(err))
			continue
		}
		if err := s.store.UpdatePublicationMetrics(ctx, pub.ID, metrics); err != nil {
			s.logger.Error("metrics update failed",
				logging.Int64("publication_id", pub.ID),
				logging.Error(err))
			continue
		}
		if rate, ok := metrics.EngagementRate(); ok {
			s.logger.Debug("publication metrics updated",
				logging.Int64("publication_id", pub.ID),
				logging.Int64("views", metrics.Views),
				logging.Float64("engagement_rate", rate))
		}
		refreshed++
	}

	if refreshed > 0 {
		s.logger.Info("metrics refreshed", logging.Int("publications", refreshed))
	}
	return refreshed, nil
}

package collect

import (
	"context"
	"errors"
	"log/slog"

	"petreel/internal/config"
	"petreel/internal/logging"
	"petreel/internal/notifications"
	"petreel/internal/services"
	"petreel/internal/store"
)

// Stage discovers trending videos across all configured collectors and
// persists them in the collected state.
type Stage struct {
	cfg        *config.Config
	store      *store.Store
	notifier   notifications.Service
	logger     *slog.Logger
	collectors []Collector
}

// NewStage wires a collection stage over the given collectors.
func NewStage(cfg *config.Config, st *store.Store, notifier notifications.Service, logger *slog.Logger, collectors ...Collector) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		cfg:        cfg,
		store:      st,
		notifier:   notifier,
		logger:     logging.NewComponentLogger(logger, "collect"),
		collectors: collectors,
	}
}

// Collect runs one collection pass: each collector searches for the
// configured hashtags, new videos are downloaded into the raw directory, and
// already-known source IDs are skipped. A failing collector or video never
// aborts the pass. Returns the number of newly stored items.
func (s *Stage) Collect(ctx context.Context) (int, error) {
	ctx = logging.WithStage(ctx, "collect")
	limit := s.cfg.Collect.Limit
	if limit <= 0 || len(s.collectors) == 0 {
		return 0, nil
	}

	share := limit / len(s.collectors)
	if share < 1 {
		share = 1
	}

	collected := 0
	for _, collector := range s.collectors {
		log := s.logger.With(logging.String(logging.FieldPlatform, collector.Platform().String()))

		videos, err := collector.Search(ctx, s.cfg.Collect.Hashtags, share)
		if err != nil {
			if services.IsNotConfigured(err) {
				log.Debug("collector not configured, skipping")
				continue
			}
			log.Warn("search failed", logging.Error(err))
			continue
		}

		for _, video := range videos {
			stored, err := s.storeVideo(ctx, collector, video)
			if err != nil {
				log.Warn("video collection failed",
					logging.String("source_id", video.SourceID),
					logging.Error(err))
				continue
			}
			if stored {
				collected++
				log.Info("video collected",
					logging.String("source_id", video.SourceID),
					logging.String("title", video.Title),
					logging.Int64("views", video.Views))
			}
		}
	}

	if collected > 0 {
		if err := s.notifier.NotifyCollectionCompleted(ctx, collected); err != nil {
			s.logger.Warn("collection notification failed", logging.Error(err))
		}
	}
	return collected, nil
}

func (s *Stage) storeVideo(ctx context.Context, collector Collector, video VideoMetadata) (bool, error) {
	existing, err := s.store.FindBySource(ctx, video.Platform, video.SourceID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	localPath, err := collector.Download(ctx, video, s.cfg.Paths.RawDir)
	if err != nil {
		return false, err
	}

	_, err = s.store.InsertCollected(ctx, store.NewCollectedItem{
		SourcePlatform: video.Platform,
		SourceID:       video.SourceID,
		SourceURL:      video.SourceURL,
		Title:          video.Title,
		Author:         video.Author,
		Hashtags:       video.Hashtags,
		Views:          video.Views,
		Likes:          video.Likes,
		LocalPath:      localPath,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

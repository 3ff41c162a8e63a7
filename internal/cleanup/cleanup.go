// Package cleanup reclaims disk space by removing aged video artifacts.
package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"petreel/internal/config"
	"petreel/internal/logging"
	"petreel/internal/notifications"
)

// Stage sweeps the raw and ready directories for files past their retention
// age.
type Stage struct {
	cfg      *config.Config
	notifier notifications.Service
	logger   *slog.Logger
}

// NewStage wires a cleanup stage.
func NewStage(cfg *config.Config, notifier notifications.Service, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		cfg:      cfg,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "cleanup"),
	}
}

// Sweep removes files older than the configured retention age from the asset
// directories. Per-file failures are logged and skipped. A notification is
// sent when at least the configured minimum number of files was removed.
// Returns the number of files removed and the bytes reclaimed.
func (s *Stage) Sweep(ctx context.Context) (int, int64, error) {
	ctx = logging.WithStage(ctx, "cleanup")
	maxAge := time.Duration(s.cfg.Cleanup.MaxAgeDays) * 24 * time.Hour
	if maxAge <= 0 {
		return 0, 0, nil
	}
	cutoff := time.Now().Add(-maxAge)

	removed := 0
	var reclaimed int64
	for _, dir := range s.cfg.AssetDirs() {
		files, bytes := s.sweepDir(ctx, dir, cutoff)
		removed += files
		reclaimed += bytes
	}

	if removed > 0 {
		s.logger.Info("cleanup complete",
			logging.Int("files", removed),
			logging.Int64("bytes", reclaimed))
	}
	if removed >= s.cfg.Cleanup.NotifyMinFiles && removed > 0 {
		if err := s.notifier.NotifyCleanupCompleted(ctx, removed, reclaimed); err != nil {
			s.logger.Warn("cleanup notification failed", logging.Error(err))
		}
	}
	return removed, reclaimed, nil
}

func (s *Stage) sweepDir(ctx context.Context, dir string, cutoff time.Time) (int, int64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cannot read asset directory",
				logging.String("dir", dir),
				logging.Error(err))
		}
		return 0, 0
	}

	removed := 0
	var reclaimed int64
	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, reclaimed
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to remove aged file",
				logging.String("path", path),
				logging.Error(err))
			continue
		}
		removed++
		reclaimed += info.Size()
	}
	return removed, reclaimed
}

// Package daemon runs the pipeline as a long-lived, single-instance process.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"

	"petreel/internal/config"
	"petreel/internal/logging"
	"petreel/internal/pipeline"
)

const lockFileName = "petreeld.lock"

// Daemon guards the pipeline manager behind a file lock so only one instance
// operates on a given data directory.
type Daemon struct {
	cfg     *config.Config
	manager *pipeline.Manager
	logger  *slog.Logger
	lock    *flock.Flock
	started bool
}

// New builds a daemon around the given manager.
func New(cfg *config.Config, manager *pipeline.Manager, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Daemon{
		cfg:     cfg,
		manager: manager,
		logger:  logging.NewComponentLogger(logger, "daemon"),
		lock:    flock.New(filepath.Join(cfg.Paths.LogDir, lockFileName)),
	}
}

// Start acquires the instance lock and launches the pipeline. It fails when
// another daemon already holds the lock.
func (d *Daemon) Start(ctx context.Context) error {
	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another instance is already running (lock %s)", d.lock.Path())
	}

	if err := d.manager.Start(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}
	d.started = true
	d.logger.Info("daemon started", logging.String("lock", d.lock.Path()))
	return nil
}

// Stop winds down the pipeline. The lock stays held until Close.
func (d *Daemon) Stop() {
	if !d.started {
		return
	}
	d.manager.Stop()
	d.started = false
	d.logger.Info("daemon stopped")
}

// Close releases the instance lock.
func (d *Daemon) Close() error {
	return d.lock.Unlock()
}

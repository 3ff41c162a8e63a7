package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"petreel/internal/config"
	"petreel/internal/daemon"
	"petreel/internal/logging"
	"petreel/internal/notifications"
	"petreel/internal/pipeline"
	"petreel/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		LogDir:  cfg.Paths.LogDir,
		LogFile: "petreeld.log",
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	notifier := notifications.NewService(cfg)
	manager := pipeline.New(cfg, st, notifier, logger)

	d := daemon.New(cfg, manager, logger)
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	d.Stop()
	logger.Info("petreeld shutting down")
}

package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"petreel/internal/config"
	"petreel/internal/logging"
	"petreel/internal/notifications"
	"petreel/internal/pipeline"
	"petreel/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
		c.configExists = exists
	})
	return c.config, c.configErr
}

// withStore opens the database for one command invocation and closes it when
// the command returns.
func (c *commandContext) withStore(cmd *cobra.Command, fn func(context.Context, *config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cmd.Context(), cfg, st)
}

// withManager builds the full production pipeline for a one-shot command. The
// scheduler is never started; commands call the manager's Run methods
// directly.
func (c *commandContext) withManager(cmd *cobra.Command, fn func(context.Context, *pipeline.Manager) error) error {
	return c.withStore(cmd, func(ctx context.Context, cfg *config.Config, st *store.Store) error {
		notifier := notifications.NewService(cfg)
		manager := pipeline.New(cfg, st, notifier, logging.NewNop())
		return fn(ctx, manager)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

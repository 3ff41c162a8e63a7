package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"petreel/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a pipeline stage immediately",
	}

	runCmd.AddCommand(&cobra.Command{
		Use:   "collect",
		Short: "Collect trending videos from the configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(cctx context.Context, manager *pipeline.Manager) error {
				collected, err := manager.RunCollect(cctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Collected %d new item(s)\n", collected)
				return nil
			})
		},
	})

	runCmd.AddCommand(&cobra.Command{
		Use:   "process",
		Short: "Process one batch of collected items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(cctx context.Context, manager *pipeline.Manager) error {
				processed, err := manager.RunProcess(cctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %d item(s)\n", processed)
				return nil
			})
		},
	})

	runCmd.AddCommand(&cobra.Command{
		Use:   "publish",
		Short: "Publish one batch of processed items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(cctx context.Context, manager *pipeline.Manager) error {
				published, err := manager.RunPublish(cctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published %d item(s)\n", published)
				return nil
			})
		},
	})

	runCmd.AddCommand(&cobra.Command{
		Use:   "metrics",
		Short: "Refresh engagement metrics for recent publications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(cctx context.Context, manager *pipeline.Manager) error {
				refreshed, err := manager.RunMetrics(cctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Refreshed metrics for %d publication(s)\n", refreshed)
				return nil
			})
		},
	})

	runCmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Sweep expired video files from the asset directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(cctx context.Context, manager *pipeline.Manager) error {
				removed, freed, err := manager.RunCleanup(cctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s), freed %d byte(s)\n", removed, freed)
				return nil
			})
		},
	})

	return runCmd
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"petreel/internal/analytics"
	"petreel/internal/config"
	"petreel/internal/store"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show publication performance for the trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("invalid window: --days must be positive, got %d", days)
			}
			return ctx.withStore(cmd, func(cctx context.Context, cfg *config.Config, st *store.Store) error {
				window := time.Duration(days) * 24 * time.Hour
				report, err := st.Report(cctx, time.Now().UTC().Add(-window))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), analytics.Render(report))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Number of trailing days to summarize")
	return cmd
}

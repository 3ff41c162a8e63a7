package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"petreel/internal/config"
	"petreel/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(cctx context.Context, cfg *config.Config, st *store.Store) error {
				health, err := st.Health(cctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Pipeline", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Database", statusOK, st.Path(), colorize))
				ntfyKind := statusOK
				ntfyMessage := "configured"
				if cfg.Notifications.NtfyTopic == "" {
					ntfyKind = statusWarn
					ntfyMessage = "no topic configured"
				}
				fmt.Fprintln(out, renderStatusLine("Notifications", ntfyKind, ntfyMessage, colorize))
				fmt.Fprintln(out)

				rows := [][]string{
					{string(store.StatusCollected), strconv.Itoa(health.Collected)},
					{string(store.StatusProcessingError), strconv.Itoa(health.ProcessingError)},
					{string(store.StatusProcessed), strconv.Itoa(health.Processed)},
					{string(store.StatusPublished), strconv.Itoa(health.Published)},
					{"total", strconv.Itoa(health.Total)},
				}
				fmt.Fprintln(out, renderTable(
					[]column{{title: "Status"}, {title: "Items", numeric: true}},
					rows,
				))
				return nil
			})
		},
	}
}

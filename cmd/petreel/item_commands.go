package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"petreel/internal/pipeline"
	"petreel/internal/platform"
)

func newReprocessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reprocess <item-id>",
		Short: "Requeue a failed item for the next processing batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withManager(cmd, func(cctx context.Context, manager *pipeline.Manager) error {
				if err := manager.ReprocessItem(cctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d requeued for processing\n", id)
				return nil
			})
		},
	}
}

func newPublishItemCommand(ctx *commandContext) *cobra.Command {
	var platformNames []string

	cmd := &cobra.Command{
		Use:   "publish-item <item-id>",
		Short: "Publish a single processed item immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			platforms, err := platform.ParseList(platformNames)
			if err != nil {
				return err
			}
			return ctx.withManager(cmd, func(cctx context.Context, manager *pipeline.Manager) error {
				if err := manager.PublishItem(cctx, id, platforms...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d dispatched to the enabled platforms\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&platformNames, "platforms", nil,
		"Restrict the fan-out to these platforms (default: all enabled)")
	return cmd
}

func parseItemID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", raw)
	}
	return id, nil
}

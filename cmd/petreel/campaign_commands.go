package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"petreel/internal/config"
	"petreel/internal/store"
)

func newCampaignCommand(ctx *commandContext) *cobra.Command {
	campaignCmd := &cobra.Command{
		Use:   "campaign",
		Short: "Manage posting campaigns",
	}

	campaignCmd.AddCommand(newCampaignCreateCommand(ctx))
	campaignCmd.AddCommand(newCampaignListCommand(ctx))
	campaignCmd.AddCommand(newCampaignToggleCommand(ctx, "resume", true))
	campaignCmd.AddCommand(newCampaignToggleCommand(ctx, "pause", false))

	return campaignCmd
}

func newCampaignCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		description string
		hashtags    []string
		ctaText     string
		watermark   bool
		postsPerDay int
		hours       []int
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a campaign and activate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("campaign name must not be empty")
			}
			for _, hour := range hours {
				if hour < 0 || hour > 23 {
					return fmt.Errorf("invalid posting hour %d: must be between 0 and 23", hour)
				}
			}
			return ctx.withStore(cmd, func(cctx context.Context, cfg *config.Config, st *store.Store) error {
				campaign, err := st.CreateCampaign(cctx, store.NewCampaign{
					Name:             name,
					Description:      description,
					TargetHashtags:   hashtags,
					CTAText:          ctaText,
					WatermarkEnabled: watermark,
					PostsPerDay:      postsPerDay,
					ActiveHours:      hours,
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Created campaign %d (%s)\n", campaign.ID, campaign.Name)
				fmt.Fprintln(out, "The daemon registers its posting slots on the next start.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Campaign description")
	cmd.Flags().StringSliceVar(&hashtags, "hashtags", nil, "Hashtags targeted during collection")
	cmd.Flags().StringVar(&ctaText, "cta", "", "Call-to-action appended to captions")
	cmd.Flags().BoolVar(&watermark, "watermark", false, "Overlay the brand watermark during processing")
	cmd.Flags().IntVar(&postsPerDay, "posts-per-day", 3, "Number of daily posting slots")
	cmd.Flags().IntSliceVar(&hours, "hours", []int{9, 13, 18}, "Hours of day for the posting slots")
	return cmd
}

func newCampaignListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(cctx context.Context, cfg *config.Config, st *store.Store) error {
				campaigns, err := st.Campaigns(cctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(campaigns) == 0 {
					fmt.Fprintln(out, "No campaigns")
					return nil
				}

				rows := make([][]string, 0, len(campaigns))
				for _, campaign := range campaigns {
					rows = append(rows, []string{
						strconv.FormatInt(campaign.ID, 10),
						campaign.Name,
						yesNo(campaign.Active),
						strconv.Itoa(campaign.PostsPerDay),
						formatHours(campaign.ActiveHours),
						strings.Join(campaign.TargetHashtags, " "),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]column{
						{title: "ID", numeric: true},
						{title: "Name"},
						{title: "Active"},
						{title: "Posts/Day", numeric: true},
						{title: "Hours"},
						{title: "Hashtags"},
					},
					rows,
				))
				return nil
			})
		},
	}
}

func newCampaignToggleCommand(ctx *commandContext, verb string, active bool) *cobra.Command {
	short := "Pause a campaign and stop its posting slots"
	if active {
		short = "Resume a paused campaign"
	}
	return &cobra.Command{
		Use:   verb + " <campaign-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid campaign id %q", args[0])
			}
			return ctx.withStore(cmd, func(cctx context.Context, cfg *config.Config, st *store.Store) error {
				campaign, err := st.GetCampaign(cctx, id)
				if err != nil {
					return err
				}
				if campaign == nil {
					return fmt.Errorf("campaign %d not found", id)
				}
				if err := st.SetCampaignActive(cctx, id, active); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if active {
					fmt.Fprintf(out, "Campaign %d (%s) resumed\n", id, campaign.Name)
				} else {
					fmt.Fprintf(out, "Campaign %d (%s) paused\n", id, campaign.Name)
				}
				fmt.Fprintln(out, "A running daemon applies the change on its next start.")
				return nil
			})
		},
	}
}

func formatHours(hours []int) string {
	if len(hours) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(hours))
	for _, hour := range hours {
		parts = append(parts, fmt.Sprintf("%02d:00", hour))
	}
	return strings.Join(parts, ", ")
}

package scheduler

import (
	"fmt"

	"petreel/internal/store"
)

// CampaignJobPrefix returns the job-name prefix under which a campaign's
// posting slots are registered.
func CampaignJobPrefix(campaignID int64) string {
	return fmt.Sprintf("campaign-%d-", campaignID)
}

// ScheduleCampaign registers one daily posting slot per configured active
// hour, up to the campaign's posts-per-day budget. Re-scheduling an already
// scheduled campaign replaces its slots.
func ScheduleCampaign(s *Scheduler, campaign *store.Campaign, fn JobFunc) []string {
	s.DeregisterPrefix(CampaignJobPrefix(campaign.ID))

	slots := campaign.PostsPerDay
	if slots > len(campaign.ActiveHours) {
		slots = len(campaign.ActiveHours)
	}

	names := make([]string, 0, slots)
	for i := 0; i < slots; i++ {
		name := fmt.Sprintf("%s%d", CampaignJobPrefix(campaign.ID), i)
		s.Register(name, DailyAt(campaign.ActiveHours[i], 0), fn)
		names = append(names, name)
	}
	return names
}

// PauseCampaign removes all scheduled slots for a campaign and returns how
// many were removed.
func PauseCampaign(s *Scheduler, campaignID int64) int {
	return s.DeregisterPrefix(CampaignJobPrefix(campaignID))
}

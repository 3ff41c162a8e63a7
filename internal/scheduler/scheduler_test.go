package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"petreel/internal/scheduler"
	"petreel/internal/services"
	"petreel/internal/store"
)

func TestEveryCadence(t *testing.T) {
	now := time.Now()
	cadence := scheduler.Every(time.Hour)
	next := cadence.Next(now)
	if next.Sub(now) != time.Hour {
		t.Fatalf("expected one hour, got %v", next.Sub(now))
	}
}

func TestDailyAtCadence(t *testing.T) {
	base := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)

	cadence := scheduler.DailyAt(8, 0)
	next := cadence.Next(base)
	if next.Hour() != 8 || next.Day() != 10 {
		t.Fatalf("expected same-day 08:00, got %v", next)
	}

	// After the slot, the next fire is tomorrow.
	after := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	next = cadence.Next(after)
	if next.Day() != 11 || next.Hour() != 8 {
		t.Fatalf("expected next-day 08:00, got %v", next)
	}

	// Exactly on the slot still rolls forward.
	exact := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	next = cadence.Next(exact)
	if next.Day() != 11 {
		t.Fatalf("expected strictly-after semantics, got %v", next)
	}
}

func TestSchedulerRunsJobs(t *testing.T) {
	sched := scheduler.New(nil, time.Minute)

	var runs atomic.Int64
	sched.Register("tick", scheduler.Every(10*time.Millisecond), func(ctx context.Context) error {
		runs.Add(1)
		if _, ok := services.RunIDFromContext(ctx); !ok {
			t.Error("expected run id on job context")
		}
		return nil
	})

	sched.Start(context.Background())
	defer sched.Stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("job did not run twice in time, runs=%d", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSchedulerSurvivesJobErrors(t *testing.T) {
	sched := scheduler.New(nil, time.Minute)

	var runs atomic.Int64
	sched.Register("flaky", scheduler.Every(10*time.Millisecond), func(context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	})

	sched.Start(context.Background())
	defer sched.Stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("failing job stopped rerunning, runs=%d", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRegisterOverwritesByName(t *testing.T) {
	sched := scheduler.New(nil, 0)

	sched.Register("job", scheduler.Every(time.Hour), func(context.Context) error { return nil })
	sched.Register("job", scheduler.Every(time.Hour), func(context.Context) error { return nil })

	if jobs := sched.Jobs(); len(jobs) != 1 {
		t.Fatalf("expected a single job after overwrite, got %v", jobs)
	}
}

func TestDeregisterPrefix(t *testing.T) {
	sched := scheduler.New(nil, 0)

	sched.Register("campaign-7-0", scheduler.Every(time.Hour), func(context.Context) error { return nil })
	sched.Register("campaign-7-1", scheduler.Every(time.Hour), func(context.Context) error { return nil })
	sched.Register("campaign-8-0", scheduler.Every(time.Hour), func(context.Context) error { return nil })
	sched.Register("collect", scheduler.Every(time.Hour), func(context.Context) error { return nil })

	removed := sched.DeregisterPrefix("campaign-7-")
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	jobs := sched.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs left, got %v", jobs)
	}
}

func TestScheduleCampaignRegistersSlots(t *testing.T) {
	sched := scheduler.New(nil, 0)

	campaign := &store.Campaign{
		ID:          7,
		PostsPerDay: 2,
		ActiveHours: []int{9, 14, 19},
	}
	names := scheduler.ScheduleCampaign(sched, campaign, func(context.Context) error { return nil })
	if len(names) != 2 {
		t.Fatalf("expected posts-per-day slots, got %v", names)
	}
	if names[0] != "campaign-7-0" || names[1] != "campaign-7-1" {
		t.Fatalf("unexpected slot names %v", names)
	}

	// Re-scheduling replaces rather than accumulates.
	campaign.PostsPerDay = 1
	names = scheduler.ScheduleCampaign(sched, campaign, func(context.Context) error { return nil })
	if len(names) != 1 {
		t.Fatalf("expected one slot after reschedule, got %v", names)
	}
	if len(sched.Jobs()) != 1 {
		t.Fatalf("expected stale slots removed, got %v", sched.Jobs())
	}

	if removed := scheduler.PauseCampaign(sched, 7); removed != 1 {
		t.Fatalf("expected pause to remove the slot, got %d", removed)
	}
	if len(sched.Jobs()) != 0 {
		t.Fatalf("expected no jobs after pause, got %v", sched.Jobs())
	}
}

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"petreel/internal/analytics"
	"petreel/internal/cleanup"
	"petreel/internal/collect"
	"petreel/internal/config"
	"petreel/internal/logging"
	"petreel/internal/notifications"
	"petreel/internal/platform"
	"petreel/internal/process"
	"petreel/internal/publish"
	"petreel/internal/scheduler"
	"petreel/internal/services"
	"petreel/internal/store"
)

// reportWindow is the trailing period summarized by scheduled reports.
const reportWindow = 7 * 24 * time.Hour

// Stages bundles the pipeline's stage implementations for wiring.
type Stages struct {
	Collect  *collect.Stage
	Process  *process.Stage
	Publish  *publish.Stage
	Metrics  *analytics.Stage
	Reporter *analytics.Reporter
	Cleanup  *cleanup.Stage
}

// Manager owns the full content pipeline: the stages, their schedules, and
// the admin surface the CLI talks to.
type Manager struct {
	cfg      *config.Config
	store    *store.Store
	notifier notifications.Service
	logger   *slog.Logger
	stages   Stages
	sched    *scheduler.Scheduler
}

// New wires the default production pipeline: API-backed collectors, ffmpeg
// and whisper tooling, and all four platform publishers.
func New(cfg *config.Config, st *store.Store, notifier notifications.Service, logger *slog.Logger) *Manager {
	registry := publish.NewRegistry(
		publish.NewInstagramPublisher(cfg),
		publish.NewTikTokPublisher(cfg),
		publish.NewYouTubePublisher(cfg),
		publish.NewFacebookPublisher(cfg),
	)
	registry.SetEnabled(platform.Instagram, cfg.Publish.Instagram.Enabled)
	registry.SetEnabled(platform.TikTok, cfg.Publish.TikTok.Enabled)
	registry.SetEnabled(platform.YouTube, cfg.Publish.YouTube.Enabled)
	registry.SetEnabled(platform.Facebook, cfg.Publish.Facebook.Enabled)

	stages := Stages{
		Collect: collect.NewStage(cfg, st, notifier, logger,
			collect.NewYouTubeCollector(cfg),
			collect.NewTikTokCollector(cfg),
		),
		Process: process.NewStage(cfg, st,
			process.NewFFmpegTranscoder(cfg.FFmpegBinary()),
			process.NewWhisperTranscriber(cfg.WhisperBinary()),
			logger),
		Publish:  publish.NewStage(cfg, st, registry, notifier, logger),
		Metrics:  analytics.NewStage(cfg, st, analytics.NewAPISource(cfg), logger),
		Reporter: analytics.NewReporter(st, notifier, logger),
		Cleanup:  cleanup.NewStage(cfg, notifier, logger),
	}
	return NewWithStages(cfg, st, notifier, logger, stages)
}

// NewWithStages wires a manager over pre-built stages. Tests use this to
// substitute fakes for external tooling.
func NewWithStages(cfg *config.Config, st *store.Store, notifier notifications.Service, logger *slog.Logger, stages Stages) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Workflow.JobTimeoutMinutes) * time.Minute
	return &Manager{
		cfg:      cfg,
		store:    st,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		stages:   stages,
		sched:    scheduler.New(logger, timeout),
	}
}

// Start registers the standing schedule, restores active campaign slots from
// the store, and launches the scheduler.
func (m *Manager) Start(ctx context.Context) error {
	m.registerDefaultJobs()

	campaigns, err := m.store.ActiveCampaigns(ctx)
	if err != nil {
		return fmt.Errorf("restore campaign schedules: %w", err)
	}
	for _, campaign := range campaigns {
		scheduler.ScheduleCampaign(m.sched, campaign, m.campaignJob(campaign.ID))
		m.logger.Info("campaign schedule restored",
			logging.Int64("campaign_id", campaign.ID),
			logging.String("name", campaign.Name))
	}

	m.sched.Start(ctx)
	m.logger.Info("pipeline started", logging.Any("jobs", m.sched.Jobs()))
	return nil
}

// Stop winds down the scheduler and waits for in-flight jobs.
func (m *Manager) Stop() {
	m.sched.Stop()
	m.logger.Info("pipeline stopped")
}

// Jobs returns the currently scheduled job names.
func (m *Manager) Jobs() []string {
	return m.sched.Jobs()
}

func (m *Manager) registerDefaultJobs() {
	m.sched.Register("collect",
		scheduler.Every(time.Duration(m.cfg.Collect.IntervalHours)*time.Hour),
		m.job("collect", func(ctx context.Context) error {
			_, err := m.stages.Collect.Collect(ctx)
			return err
		}))

	m.sched.Register("process",
		scheduler.Every(time.Duration(m.cfg.Process.IntervalMinutes)*time.Minute),
		m.job("process", func(ctx context.Context) error {
			_, err := m.stages.Process.ProcessBatch(ctx)
			return err
		}))

	for _, hour := range m.cfg.Publish.Hours {
		name := fmt.Sprintf("publish-%02d00", hour)
		m.sched.Register(name, scheduler.DailyAt(hour, 0),
			m.job("publish", func(ctx context.Context) error {
				_, err := m.stages.Publish.PublishBatch(ctx)
				return err
			}))
	}

	m.sched.Register("metrics",
		scheduler.Every(time.Duration(m.cfg.Metrics.IntervalHours)*time.Hour),
		m.job("metrics", func(ctx context.Context) error {
			_, err := m.stages.Metrics.RefreshMetrics(ctx)
			return err
		}))

	m.sched.Register("cleanup",
		scheduler.DailyAt(m.cfg.Cleanup.DailyAtHour, 0),
		m.job("cleanup", func(ctx context.Context) error {
			_, _, err := m.stages.Cleanup.Sweep(ctx)
			return err
		}))

	if m.cfg.Notifications.Reports {
		m.sched.Register("report", scheduler.DailyAt(20, 0),
			m.job("report", func(ctx context.Context) error {
				return m.stages.Reporter.Send(ctx, reportWindow)
			}))
	}
}

// campaignJob builds the job a campaign's posting slots run. The campaign is
// re-read on every fire so edits and pauses take effect without
// re-registration; a slot whose campaign is gone or paused is a no-op. The
// pass processes pending media with the campaign's watermark and CTA, then
// publishes with the campaign's caption settings.
func (m *Manager) campaignJob(id int64) scheduler.JobFunc {
	return m.job("campaign publish", func(ctx context.Context) error {
		campaign, err := m.store.GetCampaign(ctx, id)
		if err != nil {
			return err
		}
		if campaign == nil || !campaign.Active {
			return nil
		}
		if _, err := m.stages.Process.ProcessCampaignBatch(ctx, campaign); err != nil {
			return err
		}
		_, err = m.stages.Publish.PublishCampaignBatch(ctx, campaign)
		return err
	})
}

// job wraps a stage call so failures reach the error notifier in addition to
// the scheduler's log line.
func (m *Manager) job(label string, fn scheduler.JobFunc) scheduler.JobFunc {
	return func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil {
			if notifyErr := m.notifier.NotifyError(ctx, err, label); notifyErr != nil {
				m.logger.Warn("error notification failed", logging.Error(notifyErr))
			}
		}
		return err
	}
}

// RunCollect triggers one collection pass immediately.
func (m *Manager) RunCollect(ctx context.Context) (int, error) {
	return m.stages.Collect.Collect(ctx)
}

// RunProcess triggers one processing batch immediately.
func (m *Manager) RunProcess(ctx context.Context) (int, error) {
	return m.stages.Process.ProcessBatch(ctx)
}

// RunPublish triggers one publishing batch immediately.
func (m *Manager) RunPublish(ctx context.Context) (int, error) {
	return m.stages.Publish.PublishBatch(ctx)
}

// RunMetrics triggers one metrics refresh immediately.
func (m *Manager) RunMetrics(ctx context.Context) (int, error) {
	return m.stages.Metrics.RefreshMetrics(ctx)
}

// RunCleanup triggers one retention sweep immediately.
func (m *Manager) RunCleanup(ctx context.Context) (int, int64, error) {
	return m.stages.Cleanup.Sweep(ctx)
}

// ReprocessItem requeues a failed item for the next processing batch.
func (m *Manager) ReprocessItem(ctx context.Context, id int64) error {
	return m.stages.Process.ReprocessItem(ctx, id)
}

// PublishItem publishes a single processed item immediately. An optional
// platform subset restricts the fan-out.
func (m *Manager) PublishItem(ctx context.Context, id int64, platforms ...platform.Platform) error {
	return m.stages.Publish.PublishItem(ctx, id, platforms...)
}

// Report builds the performance report for the trailing window.
func (m *Manager) Report(ctx context.Context, window time.Duration) (*store.PerformanceReport, error) {
	return m.stages.Reporter.Generate(ctx, window)
}

// SetPublisherEnabled toggles a destination platform at runtime.
func (m *Manager) SetPublisherEnabled(plat platform.Platform, enabled bool) {
	m.stages.Publish.Registry().SetEnabled(plat, enabled)
	m.logger.Info("publisher toggled",
		logging.String(logging.FieldPlatform, plat.String()),
		logging.Bool("enabled", enabled))
}

// ActivateCampaign marks the campaign active and registers its posting slots.
func (m *Manager) ActivateCampaign(ctx context.Context, id int64) error {
	campaign, err := m.store.GetCampaign(ctx, id)
	if err != nil {
		return err
	}
	if campaign == nil {
		return fmt.Errorf("campaign %d: %w", id, services.ErrNotFound)
	}
	if err := m.store.SetCampaignActive(ctx, id, true); err != nil {
		return err
	}
	names := scheduler.ScheduleCampaign(m.sched, campaign, m.campaignJob(campaign.ID))
	m.logger.Info("campaign activated",
		logging.Int64("campaign_id", id),
		logging.Any("slots", names))
	return nil
}

// PauseCampaign marks the campaign inactive and removes its posting slots.
func (m *Manager) PauseCampaign(ctx context.Context, id int64) error {
	campaign, err := m.store.GetCampaign(ctx, id)
	if err != nil {
		return err
	}
	if campaign == nil {
		return fmt.Errorf("campaign %d: %w", id, services.ErrNotFound)
	}
	if err := m.store.SetCampaignActive(ctx, id, false); err != nil {
		return err
	}
	removed := scheduler.PauseCampaign(m.sched, id)
	m.logger.Info("campaign paused",
		logging.Int64("campaign_id", id),
		logging.Int("slots_removed", removed))
	return nil
}

// Health reports item counts per lifecycle state.
func (m *Manager) Health(ctx context.Context) (store.HealthSummary, error) {
	return m.store.Health(ctx)
}

package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"petreel/internal/config"
	"petreel/internal/logging"
	"petreel/internal/services"
	"petreel/internal/store"
	"petreel/internal/textutil"
)

// Stage converts collected raw videos into publish-ready clips.
type Stage struct {
	cfg         *config.Config
	store       *store.Store
	transcoder  Transcoder
	transcriber Transcriber
	logger      *slog.Logger
}

// NewStage wires a processing stage. The transcriber may be nil to disable
// caption generation entirely.
func NewStage(cfg *config.Config, st *store.Store, transcoder Transcoder, transcriber Transcriber, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		cfg:         cfg,
		store:       st,
		transcoder:  transcoder,
		transcriber: transcriber,
		logger:      logging.NewComponentLogger(logger, "process"),
	}
}

// ProcessBatch processes up to the configured batch size of collected items
// that have downloaded media. Failures are recorded per item as
// processing_error and never abort the batch. Returns the number of
// successfully processed items.
func (s *Stage) ProcessBatch(ctx context.Context) (int, error) {
	return s.processBatch(ctx, nil)
}

// ProcessCampaignBatch processes a batch with the campaign's content
// settings applied: the campaign call to action replaces the configured
// overlay text and the watermark follows the campaign's asset and toggle.
func (s *Stage) ProcessCampaignBatch(ctx context.Context, campaign *store.Campaign) (int, error) {
	return s.processBatch(ctx, campaign)
}

func (s *Stage) processBatch(ctx context.Context, campaign *store.Campaign) (int, error) {
	ctx = logging.WithStage(ctx, "process")
	items, err := s.store.CollectedItemsForProcessing(ctx, s.cfg.Process.BatchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, item := range items {
		itemCtx := services.WithItemID(ctx, item.ID)
		if err := s.processItem(itemCtx, item, campaign); err != nil {
			itemLog := logging.WithContext(itemCtx, s.logger)
			itemLog.Warn("item processing failed", logging.Error(err))
			if markErr := s.store.MarkProcessingError(itemCtx, item.ID, err.Error()); markErr != nil {
				itemLog.Error("failed to record processing error", logging.Error(markErr))
			}
			continue
		}
		processed++
	}
	return processed, nil
}

// ReprocessItem moves a failed item back to collected so the next batch picks
// it up again. Unknown items report ErrNotFound.
func (s *Stage) ReprocessItem(ctx context.Context, id int64) error {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return services.Wrap(services.ErrNotFound, "process", "reprocess",
			fmt.Sprintf("item %d does not exist", id), nil)
	}
	return s.store.RequeueForProcessing(ctx, id)
}

func (s *Stage) processItem(ctx context.Context, item *store.ContentItem, campaign *store.Campaign) error {
	if strings.TrimSpace(item.LocalPath) == "" {
		return services.Wrap(services.ErrValidation, "process", "transcode", "item has no local media", nil)
	}
	if _, err := os.Stat(item.LocalPath); err != nil {
		return services.Wrap(services.ErrValidation, "process", "transcode", "source media missing from disk", err)
	}

	outputPath := s.outputPath(item)

	log := logging.WithContext(ctx, s.logger)

	var subtitlePath string
	if s.transcriber != nil {
		srt, err := s.transcriber.Transcribe(ctx, item.LocalPath, s.cfg.Paths.ReadyDir)
		if err != nil {
			// Captions are best-effort; publish without them.
			log.Warn("transcription failed, continuing without captions", logging.Error(err))
		} else {
			subtitlePath = srt
		}
	}

	var watermarkPath string
	if campaign == nil {
		watermarkPath, _ = ResolveWatermark(s.cfg.Paths.WatermarkDir, 0)
	} else if campaign.WatermarkEnabled {
		watermarkPath, _ = ResolveWatermark(s.cfg.Paths.WatermarkDir, campaign.ID)
	}

	req := TranscodeRequest{
		InputPath:          item.LocalPath,
		OutputPath:         outputPath,
		TargetWidth:        s.cfg.Process.TargetWidth,
		TargetHeight:       s.cfg.Process.TargetHeight,
		MaxDurationSeconds: s.cfg.Process.MaxDurationSeconds,
		SubtitlePath:       subtitlePath,
		OverlayText:        s.overlayText(campaign),
		WatermarkPath:      watermarkPath,
	}
	if err := s.transcoder.Transcode(ctx, req); err != nil {
		return err
	}

	if err := s.store.MarkProcessed(ctx, item.ID, outputPath); err != nil {
		return err
	}
	log.Info("item processed", logging.String("output", outputPath))
	return nil
}

// overlayText builds the branded call-to-action burned into the clip,
// clamped to the configured caption length on word boundaries. A campaign
// CTA replaces the configured one.
func (s *Stage) overlayText(campaign *store.Campaign) string {
	cta := strings.TrimSpace(s.cfg.Process.CTAText)
	if campaign != nil && strings.TrimSpace(campaign.CTAText) != "" {
		cta = strings.TrimSpace(campaign.CTAText)
	}

	parts := make([]string, 0, 2)
	if brand := strings.TrimSpace(s.cfg.Process.BrandName); brand != "" {
		parts = append(parts, brand)
	}
	if cta != "" {
		parts = append(parts, cta)
	}
	text := strings.Join(parts, " | ")
	if max := s.cfg.Process.CaptionMaxChars; max > 0 {
		text = textutil.TruncateWords(text, max)
	}
	return text
}

func (s *Stage) outputPath(item *store.ContentItem) string {
	base := strings.TrimSuffix(filepath.Base(item.LocalPath), filepath.Ext(item.LocalPath))
	return filepath.Join(s.cfg.Paths.ReadyDir, fmt.Sprintf("%s-ready.mp4", base))
}

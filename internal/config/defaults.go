package config

const (
	defaultRawDir       = "~/.local/share/petreel/videos/raw"
	defaultReadyDir     = "~/.local/share/petreel/videos/ready"
	defaultWatermarkDir = "~/.local/share/petreel/watermarks"
	defaultLogDir       = "~/.local/share/petreel/logs"

	defaultCollectLimit          = 20
	defaultCollectIntervalHours  = 6
	defaultCollectRequestTimeout = 60
	defaultTikTokBaseURL         = "https://www.tiktok.com"

	defaultProcessBatchSize       = 5
	defaultProcessIntervalMinutes = 60
	defaultTargetWidth            = 1080
	defaultTargetHeight           = 1920
	defaultMaxDurationSeconds     = 60
	defaultCaptionMaxChars        = 80
	defaultBrandName              = "Pet Shop"
	defaultCTAText                = "Visit our store!"

	defaultPublishBatchSize      = 3
	defaultUploadPollAttempts    = 30
	defaultUploadPollDelay       = 10
	defaultPublishRequestTimeout = 300

	defaultMetricsBatchSize     = 20
	defaultMetricsIntervalHours = 2

	defaultCleanupDailyAtHour = 3
	defaultCleanupMaxAgeDays  = 7
	defaultNotifyMinFiles     = 10

	defaultNotifyRequestTimeout = 10

	defaultJobTimeoutMinutes = 30

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

var defaultHashtags = []string{"#pet", "#petshop", "#dogs", "#cats"}

var defaultPublishHours = []int{8, 14, 20}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RawDir:       defaultRawDir,
			ReadyDir:     defaultReadyDir,
			WatermarkDir: defaultWatermarkDir,
			LogDir:       defaultLogDir,
		},
		Collect: Collect{
			Hashtags:       append([]string(nil), defaultHashtags...),
			Limit:          defaultCollectLimit,
			IntervalHours:  defaultCollectIntervalHours,
			TikTokBaseURL:  defaultTikTokBaseURL,
			RequestTimeout: defaultCollectRequestTimeout,
		},
		Process: Process{
			BatchSize:          defaultProcessBatchSize,
			IntervalMinutes:    defaultProcessIntervalMinutes,
			TargetWidth:        defaultTargetWidth,
			TargetHeight:       defaultTargetHeight,
			MaxDurationSeconds: defaultMaxDurationSeconds,
			CaptionMaxChars:    defaultCaptionMaxChars,
			BrandName:          defaultBrandName,
			CTAText:            defaultCTAText,
		},
		Publish: Publish{
			BatchSize:              defaultPublishBatchSize,
			Hours:                  append([]int(nil), defaultPublishHours...),
			UploadPollAttempts:     defaultUploadPollAttempts,
			UploadPollDelaySeconds: defaultUploadPollDelay,
			RequestTimeout:         defaultPublishRequestTimeout,
		},
		Metrics: Metrics{
			BatchSize:     defaultMetricsBatchSize,
			IntervalHours: defaultMetricsIntervalHours,
		},
		Cleanup: Cleanup{
			DailyAtHour:    defaultCleanupDailyAtHour,
			MaxAgeDays:     defaultCleanupMaxAgeDays,
			NotifyMinFiles: defaultNotifyMinFiles,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Collection:     true,
			Processing:     true,
			Publishing:     true,
			Cleanup:        true,
			Reports:        true,
			Errors:         true,
		},
		Workflow: Workflow{
			JobTimeoutMinutes: defaultJobTimeoutMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for on-disk video assets.
type Paths struct {
	RawDir       string `toml:"raw_dir"`
	ReadyDir     string `toml:"ready_dir"`
	WatermarkDir string `toml:"watermark_dir"`
	LogDir       string `toml:"log_dir"`
}

// Collect contains configuration for the collection stage.
type Collect struct {
	Hashtags       []string `toml:"hashtags"`
	Limit          int      `toml:"limit"`
	IntervalHours  int      `toml:"interval_hours"`
	YouTubeAPIKey  string   `toml:"youtube_api_key"`
	TikTokBaseURL  string   `toml:"tiktok_base_url"`
	RequestTimeout int      `toml:"request_timeout"`
}

// Process contains configuration for the processing stage.
type Process struct {
	BatchSize          int    `toml:"batch_size"`
	IntervalMinutes    int    `toml:"interval_minutes"`
	TargetWidth        int    `toml:"target_width"`
	TargetHeight       int    `toml:"target_height"`
	MaxDurationSeconds int    `toml:"max_duration_seconds"`
	CaptionMaxChars    int    `toml:"caption_max_chars"`
	BrandName          string `toml:"brand_name"`
	CTAText            string `toml:"cta_text"`
}

// PlatformCredentials holds access configuration for one social platform.
type PlatformCredentials struct {
	Enabled     bool   `toml:"enabled"`
	AccessToken string `toml:"access_token"`
	PageID      string `toml:"page_id"`
}

// Publish contains configuration for the publishing stage.
type Publish struct {
	BatchSize              int                 `toml:"batch_size"`
	Hours                  []int               `toml:"hours"`
	UploadPollAttempts     int                 `toml:"upload_poll_attempts"`
	UploadPollDelaySeconds int                 `toml:"upload_poll_delay_seconds"`
	RequestTimeout         int                 `toml:"request_timeout"`
	Instagram              PlatformCredentials `toml:"instagram"`
	TikTok                 PlatformCredentials `toml:"tiktok"`
	YouTube                PlatformCredentials `toml:"youtube"`
	Facebook               PlatformCredentials `toml:"facebook"`
}

// Metrics contains configuration for the metrics refresh stage.
type Metrics struct {
	BatchSize     int `toml:"batch_size"`
	IntervalHours int `toml:"interval_hours"`
}

// Cleanup contains configuration for the artifact retention sweep.
type Cleanup struct {
	DailyAtHour    int `toml:"daily_at_hour"`
	MaxAgeDays     int `toml:"max_age_days"`
	NotifyMinFiles int `toml:"notify_min_files"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Collection     bool   `toml:"collection"`
	Processing     bool   `toml:"processing"`
	Publishing     bool   `toml:"publishing"`
	Cleanup        bool   `toml:"cleanup"`
	Reports        bool   `toml:"reports"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains configuration for scheduler timing.
type Workflow struct {
	JobTimeoutMinutes int `toml:"job_timeout_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for petreel.
//
// Configuration sections by subsystem:
//   - Paths: asset directories and log location
//   - Collect: source hashtags, batch limit, collector credentials
//   - Process: transcoding targets, caption and branding settings
//   - Publish: per-platform credentials, posting hours, upload polling
//   - Metrics: engagement refresh batching
//   - Cleanup: retention sweep settings
//   - Notifications: ntfy push notification settings
//   - Workflow: scheduler job timeout
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Collect       Collect       `toml:"collect"`
	Process       Process       `toml:"process"`
	Publish       Publish       `toml:"publish"`
	Metrics       Metrics       `toml:"metrics"`
	Cleanup       Cleanup       `toml:"cleanup"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/petreel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("petreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.RawDir, c.Paths.ReadyDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.WatermarkDir) != "" {
		// Best-effort; a missing watermark directory only disables overlays.
		_ = os.MkdirAll(c.Paths.WatermarkDir, 0o755)
	}
	return nil
}

// AssetDirs returns the directories swept by the cleanup stage.
func (c *Config) AssetDirs() []string {
	return []string{c.Paths.RawDir, c.Paths.ReadyDir}
}

// FFmpegBinary returns the ffmpeg executable name used for transcoding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// WhisperBinary returns the whisper executable name used for transcription.
func (c *Config) WhisperBinary() string {
	return "whisper"
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCollect()
	c.normalizePublish()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.RawDir, err = expandPath(c.Paths.RawDir); err != nil {
		return fmt.Errorf("paths.raw_dir: %w", err)
	}
	if c.Paths.ReadyDir, err = expandPath(c.Paths.ReadyDir); err != nil {
		return fmt.Errorf("paths.ready_dir: %w", err)
	}
	if c.Paths.WatermarkDir, err = expandPath(c.Paths.WatermarkDir); err != nil {
		return fmt.Errorf("paths.watermark_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCollect() {
	tags := make([]string, 0, len(c.Collect.Hashtags))
	for _, tag := range c.Collect.Hashtags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		tags = append(tags, defaultHashtags...)
	}
	c.Collect.Hashtags = tags
	if c.Collect.Limit <= 0 {
		c.Collect.Limit = defaultCollectLimit
	}
	if c.Collect.RequestTimeout <= 0 {
		c.Collect.RequestTimeout = defaultCollectRequestTimeout
	}
	if strings.TrimSpace(c.Collect.TikTokBaseURL) == "" {
		c.Collect.TikTokBaseURL = defaultTikTokBaseURL
	}
}

func (c *Config) normalizePublish() {
	if len(c.Publish.Hours) == 0 {
		c.Publish.Hours = append([]int(nil), defaultPublishHours...)
	}
	if c.Publish.UploadPollAttempts <= 0 {
		c.Publish.UploadPollAttempts = defaultUploadPollAttempts
	}
	if c.Publish.UploadPollDelaySeconds <= 0 {
		c.Publish.UploadPollDelaySeconds = defaultUploadPollDelay
	}
	if c.Publish.RequestTimeout <= 0 {
		c.Publish.RequestTimeout = defaultPublishRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

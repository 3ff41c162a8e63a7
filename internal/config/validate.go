package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Platform credentials are not
// required here; unconfigured publishers are skipped at runtime.
func (c *Config) Validate() error {
	if err := c.validateProcess(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	if err := c.validateCleanup(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProcess() error {
	if c.Process.BatchSize <= 0 {
		return errors.New("process.batch_size must be positive")
	}
	if c.Process.TargetWidth <= 0 || c.Process.TargetHeight <= 0 {
		return errors.New("process.target_width and process.target_height must be positive")
	}
	if c.Process.MaxDurationSeconds <= 0 {
		return errors.New("process.max_duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.BatchSize <= 0 {
		return errors.New("publish.batch_size must be positive")
	}
	for _, hour := range c.Publish.Hours {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("publish.hours: %d is not a valid hour of day", hour)
		}
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.BatchSize <= 0 {
		return errors.New("metrics.batch_size must be positive")
	}
	if c.Metrics.IntervalHours <= 0 {
		return errors.New("metrics.interval_hours must be positive")
	}
	return nil
}

func (c *Config) validateCleanup() error {
	if c.Cleanup.DailyAtHour < 0 || c.Cleanup.DailyAtHour > 23 {
		return errors.New("cleanup.daily_at_hour must be between 0 and 23")
	}
	if c.Cleanup.MaxAgeDays <= 0 {
		return errors.New("cleanup.max_age_days must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.JobTimeoutMinutes <= 0 {
		return errors.New("workflow.job_timeout_minutes must be positive")
	}
	return nil
}

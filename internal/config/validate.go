package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBot(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	if err := c.validateReadiness(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateEffects()
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateBot() error {
	if !c.Bot.Enabled {
		return nil
	}
	if c.Bot.APIBaseURL == "" {
		return errors.New("bot.api_base_url must be set when bot.enabled is true")
	}
	if c.Bot.PollTimeout <= 0 {
		return errors.New("bot.poll_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.Timeout <= 0 {
		return errors.New("engine.timeout must be positive (seconds)")
	}
	if c.Engine.OutputFormat == "" {
		return errors.New("engine.output_format must be set")
	}
	if c.Engine.Bitrate == "" {
		return errors.New("engine.bitrate must be set")
	}
	return nil
}

func (c *Config) validateJobs() error {
	if c.Jobs.MaxConcurrent <= 0 {
		return errors.New("jobs.max_concurrent must be positive")
	}
	if c.Jobs.MaxInputBytes <= 0 {
		return errors.New("jobs.max_input_bytes must be positive")
	}
	return ensurePositiveMap(map[string]int{
		"jobs.queue_poll_interval":   c.Jobs.QueuePollInterval,
		"jobs.error_retry_interval":  c.Jobs.ErrorRetryInterval,
		"jobs.stale_staging_max_age": c.Jobs.StaleStagingMaxAge,
	})
}

func (c *Config) validateReadiness() error {
	if c.Readiness.IdleThreshold < 0 {
		return errors.New("readiness.idle_threshold must not be negative (0 disables cold-start notices)")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// validateEffects rejects malformed registry additions at startup. A bad
// entry is a fatal configuration error, never a runtime error.
func (c *Config) validateEffects() error {
	seen := make(map[string]struct{}, len(c.Effects.Extra))
	for i, entry := range c.Effects.Extra {
		if entry.ID == "" {
			return fmt.Errorf("effects.extra[%d]: id must be set", i)
		}
		if strings.ContainsAny(entry.ID, " \t/") {
			return fmt.Errorf("effects.extra[%d]: id %q must not contain spaces or slashes", i, entry.ID)
		}
		if entry.FilterArgs == "" {
			return fmt.Errorf("effects.extra[%d] (%s): filter_args must be set", i, entry.ID)
		}
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("effects.extra: duplicate id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

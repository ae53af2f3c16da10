package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(strings.TrimSpace(c.Paths.StagingDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)

	c.Bot.TokenEnv = strings.TrimSpace(c.Bot.TokenEnv)
	if c.Bot.TokenEnv == "" {
		c.Bot.TokenEnv = defaultBotTokenEnv
	}
	c.Bot.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Bot.APIBaseURL), "/")

	c.Engine.FFmpegBinary = strings.TrimSpace(c.Engine.FFmpegBinary)
	if c.Engine.FFmpegBinary == "" {
		c.Engine.FFmpegBinary = defaultFFmpegBinary
	}
	c.Engine.FFprobeBinary = strings.TrimSpace(c.Engine.FFprobeBinary)
	if c.Engine.FFprobeBinary == "" {
		c.Engine.FFprobeBinary = defaultFFprobeBinary
	}
	c.Engine.OutputFormat = strings.ToLower(strings.TrimSpace(c.Engine.OutputFormat))
	c.Engine.Bitrate = strings.TrimSpace(c.Engine.Bitrate)

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	for i := range c.Effects.Extra {
		entry := &c.Effects.Extra[i]
		entry.ID = strings.ToLower(strings.TrimSpace(entry.ID))
		entry.DisplayName = strings.TrimSpace(entry.DisplayName)
		entry.FilterArgs = strings.TrimSpace(entry.FilterArgs)
		entry.CostClass = strings.ToLower(strings.TrimSpace(entry.CostClass))
	}
	return nil
}

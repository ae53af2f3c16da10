package config

const (
	defaultStagingDir          = "~/.local/share/warble/staging"
	defaultLogDir              = "~/.local/share/warble/logs"
	defaultAPIBind             = "127.0.0.1:7487"
	defaultBotTokenEnv         = "BOT_TOKEN"
	defaultBotAPIBaseURL       = "https://api.telegram.org"
	defaultBotPollTimeout      = 30
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultEngineTimeout       = 120
	defaultOutputFormat        = "mp3"
	defaultBitrate             = "192k"
	defaultMaxConcurrent       = 2
	defaultMaxInputBytes       = 20 * 1024 * 1024
	defaultQueuePollInterval   = 2
	defaultErrorRetryInterval  = 5
	defaultStaleStagingMaxAge  = 24
	defaultMinFreeStagingBytes = 256 * 1024 * 1024
	defaultIdleThreshold       = 900
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Bot: Bot{
			Enabled:     true,
			TokenEnv:    defaultBotTokenEnv,
			APIBaseURL:  defaultBotAPIBaseURL,
			PollTimeout: defaultBotPollTimeout,
		},
		Engine: Engine{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Timeout:       defaultEngineTimeout,
			OutputFormat:  defaultOutputFormat,
			Bitrate:       defaultBitrate,
		},
		Jobs: Jobs{
			MaxConcurrent:       defaultMaxConcurrent,
			MaxInputBytes:       defaultMaxInputBytes,
			QueuePollInterval:   defaultQueuePollInterval,
			ErrorRetryInterval:  defaultErrorRetryInterval,
			StaleStagingMaxAge:  defaultStaleStagingMaxAge,
			MinFreeStagingBytes: defaultMinFreeStagingBytes,
		},
		Readiness: Readiness{
			IdleThreshold: defaultIdleThreshold,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completion:     true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

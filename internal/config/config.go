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

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Bot contains configuration for the chat transport front end.
type Bot struct {
	Enabled     bool   `toml:"enabled"`
	TokenEnv    string `toml:"token_env"`
	APIBaseURL  string `toml:"api_base_url"`
	PollTimeout int    `toml:"poll_timeout"`
}

// Engine contains configuration for the external transcoding engine.
type Engine struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	Timeout       int    `toml:"timeout"`
	OutputFormat  string `toml:"output_format"`
	Bitrate       string `toml:"bitrate"`
}

// Jobs contains configuration for the job manager.
type Jobs struct {
	MaxConcurrent       int   `toml:"max_concurrent"`
	MaxInputBytes       int64 `toml:"max_input_bytes"`
	QueuePollInterval   int   `toml:"queue_poll_interval"`
	ErrorRetryInterval  int   `toml:"error_retry_interval"`
	StaleStagingMaxAge  int   `toml:"stale_staging_max_age"`
	MinFreeStagingBytes int64 `toml:"min_free_staging_bytes"`
}

// Readiness contains configuration for cold-start detection.
type Readiness struct {
	IdleThreshold int `toml:"idle_threshold"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Completion     bool   `toml:"completion"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// EffectEntry describes one user-supplied effect added to the built-in catalog.
type EffectEntry struct {
	ID          string `toml:"id"`
	DisplayName string `toml:"display_name"`
	FilterArgs  string `toml:"filter_args"`
	CostClass   string `toml:"cost_class"`
}

// Effects contains optional additions to the effect registry.
type Effects struct {
	Extra []EffectEntry `toml:"extra"`
}

// Config encapsulates all configuration values for warble.
//
// Configuration sections by subsystem:
//   - Paths: staging/log directories and API bind address
//   - Bot: chat transport polling and token source
//   - Engine: ffmpeg/ffprobe binaries, per-job timeout, output encoding
//   - Jobs: concurrency ceiling, input size ceiling, poll intervals
//   - Readiness: idle threshold for cold-start detection
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
//   - Effects: extra effect registry entries
type Config struct {
	Paths         Paths         `toml:"paths"`
	Bot           Bot           `toml:"bot"`
	Engine        Engine        `toml:"engine"`
	Jobs          Jobs          `toml:"jobs"`
	Readiness     Readiness     `toml:"readiness"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Effects       Effects       `toml:"effects"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/warble/config.toml")
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

	projectPath, err := filepath.Abs("warble.toml")
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
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// BotToken reads the chat transport token from the configured environment
// variable. An empty result means the transport cannot authenticate.
func (c *Config) BotToken() string {
	return strings.TrimSpace(os.Getenv(c.Bot.TokenEnv))
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

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("missing file should not report as existing")
	}
	if cfg.Jobs.MaxConcurrent != defaultMaxConcurrent {
		t.Fatalf("expected default max_concurrent, got %d", cfg.Jobs.MaxConcurrent)
	}
	if cfg.Bot.TokenEnv != defaultBotTokenEnv {
		t.Fatalf("expected default token env, got %q", cfg.Bot.TokenEnv)
	}
}

func TestLoadAppliesOverridesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[paths]
staging_dir = "/tmp/warble-test/staging "
log_dir = "/tmp/warble-test/logs"

[engine]
output_format = "MP3"

[jobs]
max_concurrent = 4

[logging]
level = "DEBUG"
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved=%s exists=true, got %s %v", path, resolved, exists)
	}
	if cfg.Jobs.MaxConcurrent != 4 {
		t.Fatalf("override lost, got %d", cfg.Jobs.MaxConcurrent)
	}
	if cfg.Engine.OutputFormat != "mp3" {
		t.Fatalf("expected lowercased format, got %q", cfg.Engine.OutputFormat)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased level, got %q", cfg.Logging.Level)
	}
	if strings.HasSuffix(cfg.Paths.StagingDir, " ") {
		t.Fatalf("staging dir not trimmed: %q", cfg.Paths.StagingDir)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			"zero workers",
			"[jobs]\nmax_concurrent = 0\n",
			"jobs.max_concurrent",
		},
		{
			"negative idle threshold",
			"[readiness]\nidle_threshold = -1\n",
			"readiness.idle_threshold",
		},
		{
			"bad log format",
			"[logging]\nformat = \"xml\"\n",
			"logging.format",
		},
		{
			"effect without filter",
			"[[effects.extra]]\nid = \"quiet\"\n",
			"filter_args",
		},
		{
			"duplicate effect id",
			"[[effects.extra]]\nid = \"a\"\nfilter_args = \"volume=-1dB\"\n[[effects.extra]]\nid = \"a\"\nfilter_args = \"volume=-2dB\"\n",
			"duplicate",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			_, _, _, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBotTokenReadsConfiguredEnv(t *testing.T) {
	cfg := Default()
	cfg.Bot.TokenEnv = "WARBLE_TEST_TOKEN"
	t.Setenv("WARBLE_TEST_TOKEN", "  secret  ")

	if got := cfg.BotToken(); got != "secret" {
		t.Fatalf("expected trimmed token, got %q", got)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("sample config not detected")
	}
	if cfg.Engine.OutputFormat != "mp3" {
		t.Fatalf("unexpected sample output format %q", cfg.Engine.OutputFormat)
	}
}

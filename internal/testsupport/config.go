// Package testsupport provides shared helpers for package tests: temp-dir
// configs, stubbed external binaries, and queue store fixtures.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"warble/internal/config"
	"warble/internal/queue"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Bot.Enabled = false
	cfgVal.Jobs.QueuePollInterval = 1
	cfgVal.Jobs.ErrorRetryInterval = 1
	cfgVal.Jobs.MinFreeStagingBytes = 1
	cfgVal.Engine.Timeout = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithMaxConcurrent overrides the worker pool size on the test config.
func WithMaxConcurrent(workers int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Jobs.MaxConcurrent = workers
	}
}

// WithMaxInputBytes overrides the upload size ceiling on the test config.
func WithMaxInputBytes(limit int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Jobs.MaxInputBytes = limit
	}
}

// StubBinary writes an executable shell script with the given name into a
// temp directory, prepends that directory to PATH for the test, and returns
// the script's path.
func StubBinary(t testing.TB, name, script string) string {
	t.Helper()

	binDir := t.TempDir()
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return target
}

// NewStore opens a fresh queue store under the config's log directory.
func NewStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()
	store, err := queue.OpenPath(filepath.Join(cfg.Paths.LogDir, "jobs.db"))
	if err != nil {
		t.Fatalf("open queue store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// WriteFile creates a file with the given contents under the config's base
// temp directory and returns its path.
func WriteFile(t testing.TB, cfg *config.Config, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(BaseDir(cfg), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}

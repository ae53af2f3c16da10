// Package ffmpeg invokes the ffmpeg binary to render audio effects. Every
// invocation runs under a hard deadline and leaves no partial output behind.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"warble/internal/logging"
	"warble/internal/services"
)

var commandContext = exec.CommandContext

// stderrExcerptLimit caps how much subprocess stderr is kept for diagnostics.
const stderrExcerptLimit = 2048

// Request describes a single render.
type Request struct {
	InputPath  string
	OutputPath string
	FilterArgs string
	Format     string
	Bitrate    string
	Timeout    time.Duration
}

// Result reports what a completed render produced.
type Result struct {
	OutputPath  string
	OutputBytes int64
	Elapsed     time.Duration
}

// Runner executes ffmpeg renders.
type Runner struct {
	binary string
	logger *slog.Logger
}

// NewRunner constructs a runner for the given ffmpeg binary.
func NewRunner(binary string, logger *slog.Logger) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{binary: binary, logger: logging.NewComponentLogger(logger, "ffmpeg")}
}

// Run renders req.InputPath through the filter graph into req.OutputPath.
// On timeout the subprocess is killed, any partial output is removed, and the
// returned error classifies as a timeout. A successful exit with a missing or
// empty output file is reported as an empty-output failure.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.InputPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "render", "run", "input path required", nil)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "render", "run", "output path required", nil)
	}
	if strings.TrimSpace(req.FilterArgs) == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "render", "run", "filter graph required", nil)
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	args := []string{"-hide_banner", "-nostdin", "-y", "-i", req.InputPath, "-af", req.FilterArgs}
	if req.Bitrate != "" {
		args = append(args, "-b:a", req.Bitrate)
	}
	if req.Format != "" {
		args = append(args, "-f", req.Format)
	}
	args = append(args, req.OutputPath)

	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("starting render", logging.String("filter", req.FilterArgs), logging.Duration("budget", req.Timeout))

	var stderr bytes.Buffer
	cmd := commandContext(runCtx, r.binary, args...) //nolint:gosec
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	if err != nil {
		r.discardPartial(req.OutputPath)
		excerpt := stderrExcerpt(stderr.Bytes())
		if errors.Is(ctx.Err(), context.Canceled) {
			return Result{}, ctx.Err()
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("render exceeded budget", logging.Duration("elapsed", elapsed))
			return Result{}, services.Wrap(services.ErrTimeout, "render", "run",
				fmt.Sprintf("killed after %s", req.Timeout), nil)
		}
		message := "ffmpeg exited with error"
		if excerpt != "" {
			message = fmt.Sprintf("%s: %s", message, excerpt)
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "render", "run", message, err)
	}

	info, statErr := os.Stat(req.OutputPath)
	if statErr != nil || info.Size() == 0 {
		r.discardPartial(req.OutputPath)
		return Result{}, services.Wrap(services.ErrEmptyOutput, "render", "run",
			"ffmpeg exited cleanly but produced no output", nil)
	}

	logger.Debug("render complete", logging.Int64("output_bytes", info.Size()), logging.Duration("elapsed", elapsed))
	return Result{OutputPath: req.OutputPath, OutputBytes: info.Size(), Elapsed: elapsed}, nil
}

func (r *Runner) discardPartial(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("failed to remove partial output", logging.String("path", path), logging.Error(err))
	}
}

func stderrExcerpt(output []byte) string {
	trimmed := strings.TrimSpace(string(output))
	if len(trimmed) > stderrExcerptLimit {
		trimmed = trimmed[len(trimmed)-stderrExcerptLimit:]
	}
	return trimmed
}

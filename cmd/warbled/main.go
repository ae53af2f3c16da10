// Command warbled runs the audio effects daemon: the job pipeline, the chat
// transport poller, and the local status API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"warble/internal/bot"
	"warble/internal/config"
	"warble/internal/daemon"
	"warble/internal/effects"
	"warble/internal/intake"
	"warble/internal/jobs"
	"warble/internal/logging"
	"warble/internal/notifications"
	"warble/internal/queue"
	"warble/internal/readiness"
	"warble/internal/services/ffmpeg"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "warbled:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Local development convenience; missing .env files are fine.
	_ = godotenv.Load()

	cfg, resolvedPath, exists, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("loaded configuration", logging.String("path", resolvedPath))
	} else {
		logger.Info("no config file found, using defaults", logging.String("expected_path", resolvedPath))
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := effects.New(cfg.Effects.Extra)
	if err != nil {
		return err
	}

	runner := ffmpeg.NewRunner(cfg.Engine.FFmpegBinary, logger)
	notifier := notifications.NewService(cfg)
	gate := readiness.New(time.Duration(cfg.Readiness.IdleThreshold) * time.Second)
	manager := jobs.NewManager(cfg, store, registry, runner, notifier, logger)

	var poller *bot.Poller
	if cfg.Bot.Enabled {
		token := cfg.BotToken()
		if token == "" {
			logger.Warn("bot enabled but no token set, transport disabled",
				logging.String("token_env", cfg.Bot.TokenEnv))
		} else {
			client := bot.NewClient(cfg.Bot.APIBaseURL, token, cfg.Bot.PollTimeout)
			adapter := intake.New(manager, bot.NewDeliverer(client), gate, logger)
			manager.SetTerminalHook(adapter.HandleTerminal)
			poller = bot.NewPoller(client, adapter, registry, manager, cfg, logger)
		}
	}

	d, err := daemon.New(cfg, store, manager, registry, notifier, gate, poller, logger, version)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return d.Stop(shutdownCtx)
}

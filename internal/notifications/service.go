// Package notifications pushes operator-facing events to ntfy. This channel
// is for whoever runs the daemon; user-facing delivery happens over the chat
// transport instead.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"warble/internal/config"
)

const userAgent = "Warble/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyJobCompleted(ctx context.Context, effectName string, latency time.Duration) error
	NotifyJobFailed(ctx context.Context, effectName, reason string) error
	NotifyDaemonStarted(ctx context.Context, version string) error
	NotifyDaemonStopped(ctx context.Context, inFlight int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:       topic,
		client:         &http.Client{Timeout: timeout},
		sendCompletion: cfg.Notifications.Completion,
		sendErrors:     cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	sendCompletion bool
	sendErrors     bool
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, effectName string, latency time.Duration) error {
	if !n.sendCompletion {
		return nil
	}
	latency = latency.Round(time.Second)
	if latency < 0 {
		latency = 0
	}
	data := payload{
		title:   "Warble - Job Complete",
		message: fmt.Sprintf("Rendered %s in %s", strings.TrimSpace(effectName), latency),
		tags:    []string{"warble", "job", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, effectName, reason string) error {
	if !n.sendErrors {
		return nil
	}
	effectName = strings.TrimSpace(effectName)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Warble - Job Failed",
		message:  fmt.Sprintf("Failed %s: %s", effectName, reason),
		tags:     []string{"warble", "job", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStarted(ctx context.Context, version string) error {
	version = strings.TrimSpace(version)
	if version == "" {
		version = "dev"
	}
	data := payload{
		title:   "Warble - Started",
		message: fmt.Sprintf("Daemon started (%s)", version),
		tags:    []string{"warble", "daemon", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStopped(ctx context.Context, inFlight int) error {
	message := "Daemon stopped"
	if inFlight > 0 {
		message = fmt.Sprintf("Daemon stopped with %d jobs in flight", inFlight)
	}
	data := payload{
		title:   "Warble - Stopped",
		message: message,
		tags:    []string{"warble", "daemon", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Warble - Test",
		message:  "Notification system test",
		tags:     []string{"warble", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobCompleted(context.Context, string, time.Duration) error { return nil }
func (noopService) NotifyJobFailed(context.Context, string, string) error           { return nil }
func (noopService) NotifyDaemonStarted(context.Context, string) error               { return nil }
func (noopService) NotifyDaemonStopped(context.Context, int) error                  { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }

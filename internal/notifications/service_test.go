package notifications

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"warble/internal/config"
)

type recordedRequest struct {
	title    string
	priority string
	body     string
}

func newRecordingServer(t *testing.T) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			title:    r.Header.Get("Title"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newTestService(topic string, completion, errors bool) Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.Completion = completion
	cfg.Notifications.Errors = errors
	return NewService(&cfg)
}

func TestNotifyJobCompleted(t *testing.T) {
	server, requests := newRecordingServer(t)
	service := newTestService(server.URL, true, true)

	if err := service.NotifyJobCompleted(context.Background(), "Echo", 3*time.Second); err != nil {
		t.Fatalf("NotifyJobCompleted returned error: %v", err)
	}

	if len(*requests) != 1 {
		t.Fatalf("expected one request, got %d", len(*requests))
	}
	got := (*requests)[0]
	if got.title != "Warble - Job Complete" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if !strings.Contains(got.body, "Echo") {
		t.Fatalf("body missing effect name: %q", got.body)
	}
}

func TestNotifyJobFailedPriority(t *testing.T) {
	server, requests := newRecordingServer(t)
	service := newTestService(server.URL, true, true)

	if err := service.NotifyJobFailed(context.Background(), "Echo", "render failed"); err != nil {
		t.Fatalf("NotifyJobFailed returned error: %v", err)
	}

	if len(*requests) != 1 {
		t.Fatalf("expected one request, got %d", len(*requests))
	}
	if (*requests)[0].priority != "high" {
		t.Fatalf("expected high priority, got %q", (*requests)[0].priority)
	}
}

func TestCompletionToggleSuppressesSend(t *testing.T) {
	server, requests := newRecordingServer(t)
	service := newTestService(server.URL, false, false)

	if err := service.NotifyJobCompleted(context.Background(), "Echo", time.Second); err != nil {
		t.Fatalf("NotifyJobCompleted returned error: %v", err)
	}
	if err := service.NotifyJobFailed(context.Background(), "Echo", "boom"); err != nil {
		t.Fatalf("NotifyJobFailed returned error: %v", err)
	}

	if len(*requests) != 0 {
		t.Fatalf("expected no requests, got %d", len(*requests))
	}
}

func TestEmptyTopicReturnsNoop(t *testing.T) {
	service := newTestService("", true, true)

	if _, ok := service.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", service)
	}
	if err := service.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop TestNotification returned error: %v", err)
	}
}

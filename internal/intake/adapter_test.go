package intake

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"warble/internal/queue"
	"warble/internal/readiness"
)

type fakeDeliverer struct {
	mu       sync.Mutex
	results  []queue.Job
	failures []string
}

func (f *fakeDeliverer) DeliverResult(_ context.Context, job queue.Job, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, job)
	return nil
}

func (f *fakeDeliverer) DeliverFailure(_ context.Context, _ queue.Job, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, message)
	return nil
}

func TestHandleTerminalDeliversResult(t *testing.T) {
	deliverer := &fakeDeliverer{}
	adapter := New(nil, deliverer, readiness.New(time.Minute), nil)

	adapter.HandleTerminal(context.Background(), queue.Job{
		ID:         7,
		Status:     queue.StatusCompleted,
		ResultPath: "/tmp/out.mp3",
	})

	if len(deliverer.results) != 1 || len(deliverer.failures) != 0 {
		t.Fatalf("expected one result delivery, got %d results %d failures",
			len(deliverer.results), len(deliverer.failures))
	}
}

func TestHandleTerminalDeliversSanitizedFailure(t *testing.T) {
	deliverer := &fakeDeliverer{}
	adapter := New(nil, deliverer, readiness.New(time.Minute), nil)

	adapter.HandleTerminal(context.Background(), queue.Job{
		ID:           8,
		Status:       queue.StatusTimedOut,
		ErrorKind:    queue.ErrKindTimedOut,
		ErrorMessage: "timeout: render: run: killed after 120s",
	})

	if len(deliverer.failures) != 1 {
		t.Fatalf("expected one failure delivery, got %d", len(deliverer.failures))
	}
	message := deliverer.failures[0]
	if strings.Contains(message, "render") || strings.Contains(message, "120s") {
		t.Fatalf("failure text leaked internals: %q", message)
	}
	if !strings.Contains(message, "too long") {
		t.Fatalf("unexpected failure text: %q", message)
	}
}

func TestHandleTerminalCancellationIsSilent(t *testing.T) {
	deliverer := &fakeDeliverer{}
	adapter := New(nil, deliverer, readiness.New(time.Minute), nil)

	adapter.HandleTerminal(context.Background(), queue.Job{
		ID:        9,
		Status:    queue.StatusCancelled,
		ErrorKind: queue.ErrKindCancelled,
	})

	if len(deliverer.results) != 0 || len(deliverer.failures) != 0 {
		t.Fatal("cancelled jobs must not trigger deliveries")
	}
}

func TestFailureMessageNeverEmptyForFailures(t *testing.T) {
	kinds := []queue.ErrorKind{
		queue.ErrKindUnknownEffect,
		queue.ErrKindOversized,
		queue.ErrKindUnsupportedFormat,
		queue.ErrKindEngineError,
		queue.ErrKindTimedOut,
		queue.ErrKindEmptyOutput,
		queue.ErrKindStagingError,
	}
	for _, kind := range kinds {
		if FailureMessage(kind) == "" {
			t.Fatalf("kind %s has no user-facing text", kind)
		}
	}
	if FailureMessage(queue.ErrKindCancelled) != "" {
		t.Fatal("cancellations must stay silent")
	}
}

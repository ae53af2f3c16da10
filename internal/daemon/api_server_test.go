package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"warble/internal/api"
	"warble/internal/effects"
	"warble/internal/jobs"
	"warble/internal/queue"
	"warble/internal/testsupport"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.NewStore(t, cfg)

	registry, err := effects.New(nil)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	manager := jobs.NewManager(cfg, store, registry, nil, nil, nil)

	d, err := New(cfg, store, manager, registry, nil, nil, nil, nil, "test")
	if err != nil {
		t.Fatalf("build daemon: %v", err)
	}
	return d
}

func newTestAPI(t *testing.T) (*Daemon, *httptest.Server) {
	t.Helper()
	d := newTestDaemon(t)
	server := httptest.NewServer(d.api.server.Handler)
	t.Cleanup(server.Close)
	return d, server
}

func TestHandleStatus(t *testing.T) {
	d, server := newTestAPI(t)

	if _, err := d.store.NewJob(context.Background(), "echo", "42", "", "voice.ogg", 128); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	resp, err := http.Get(server.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code %d", resp.StatusCode)
	}

	var status api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Version != "test" {
		t.Fatalf("unexpected version %q", status.Version)
	}
	if status.Queue.Waiting != 1 {
		t.Fatalf("expected one waiting job, got %+v", status.Queue)
	}
}

func TestHandleQueueFiltersByStatus(t *testing.T) {
	d, server := newTestAPI(t)

	job, err := d.store.NewJob(context.Background(), "echo", "42", "", "voice.ogg", 128)
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	job.Status = queue.StatusCompleted
	if err := d.store.Update(context.Background(), job); err != nil {
		t.Fatalf("update job: %v", err)
	}
	if _, err := d.store.NewJob(context.Background(), "reverb", "42", "", "voice2.ogg", 64); err != nil {
		t.Fatalf("seed second job: %v", err)
	}

	resp, err := http.Get(server.URL + "/api/queue?status=completed")
	if err != nil {
		t.Fatalf("GET queue: %v", err)
	}
	defer resp.Body.Close()

	var payload api.QueueListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode queue: %v", err)
	}
	if payload.Total != 1 || len(payload.Jobs) != 1 {
		t.Fatalf("expected one completed job, got %+v", payload)
	}
	if payload.Jobs[0].Status != "completed" {
		t.Fatalf("unexpected status %q", payload.Jobs[0].Status)
	}

	resp, err = http.Get(server.URL + "/api/queue?status=bogus")
	if err != nil {
		t.Fatalf("GET queue with bad filter: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
}

func TestHandleQueueItem(t *testing.T) {
	d, server := newTestAPI(t)

	job, err := d.store.NewJob(context.Background(), "echo", "42", "", "voice.ogg", 128)
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}

	resp, err := http.Get(server.URL + "/api/queue/" + itoa(job.ID))
	if err != nil {
		t.Fatalf("GET job: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code %d", resp.StatusCode)
	}

	var summary api.JobSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if summary.ID != job.ID || summary.Effect != "echo" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	resp, err = http.Get(server.URL + "/api/queue/999999")
	if err != nil {
		t.Fatalf("GET missing job: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing job, got %d", resp.StatusCode)
	}
}

func TestCancelEndpoint(t *testing.T) {
	d, server := newTestAPI(t)

	job, err := d.store.NewJob(context.Background(), "echo", "42", "", "voice.ogg", 128)
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}

	resp, err := http.Post(server.URL+"/api/queue/"+itoa(job.ID)+"/cancel", "", nil)
	if err != nil {
		t.Fatalf("POST cancel: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code %d", resp.StatusCode)
	}

	stored, err := d.store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status != queue.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", stored.Status)
	}

	resp, err = http.Post(server.URL+"/api/queue/"+itoa(job.ID)+"/cancel", "", nil)
	if err != nil {
		t.Fatalf("POST second cancel: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for terminal job, got %d", resp.StatusCode)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

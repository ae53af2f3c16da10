package queue

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func stageJob(t *testing.T, store *Store, effectID string) *Job {
	t.Helper()
	job, err := store.NewJob(context.Background(), effectID, "42", "corr", "voice.ogg", 128)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.Status = StatusStaged
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("stage job: %v", err)
	}
	return job
}

func TestNewJobRoundTrip(t *testing.T) {
	store := newTestStore(t)

	job, err := store.NewJob(context.Background(), "echo", "42", "corr-1", "voice.ogg", 2048)
	if err != nil {
		t.Fatalf("NewJob returned error: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if job.Status != StatusReceived {
		t.Fatalf("expected received, got %s", job.Status)
	}

	fetched, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if fetched == nil {
		t.Fatal("job not found")
	}
	if fetched.EffectID != "echo" || fetched.RequesterRef != "42" || fetched.InputBytes != 2048 {
		t.Fatalf("round trip mismatch: %+v", fetched)
	}
	if fetched.StartedAt != nil || fetched.FinishedAt != nil || fetched.CleanedAt != nil {
		t.Fatal("fresh job must have no lifecycle timestamps")
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	job, err := store.GetByID(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil for missing job, got %+v", job)
	}
}

func TestClaimNextStagedIsFIFOAndExclusive(t *testing.T) {
	store := newTestStore(t)

	first := stageJob(t, store, "echo")
	second := stageJob(t, store, "reverb")

	claimed, err := store.ClaimNextStaged(context.Background())
	if err != nil {
		t.Fatalf("claim returned error: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID {
		t.Fatalf("expected oldest job %d first, got %+v", first.ID, claimed)
	}
	if claimed.Status != StatusProcessing {
		t.Fatalf("claimed job should be processing, got %s", claimed.Status)
	}
	if claimed.StartedAt == nil {
		t.Fatal("claim must stamp StartedAt")
	}

	claimed, err = store.ClaimNextStaged(context.Background())
	if err != nil {
		t.Fatalf("second claim returned error: %v", err)
	}
	if claimed == nil || claimed.ID != second.ID {
		t.Fatalf("expected job %d second, got %+v", second.ID, claimed)
	}

	claimed, err = store.ClaimNextStaged(context.Background())
	if err != nil {
		t.Fatalf("empty claim returned error: %v", err)
	}
	if claimed != nil {
		t.Fatalf("expected no staged jobs left, got %+v", claimed)
	}
}

func TestConcurrentClaimsNeverShareAJob(t *testing.T) {
	store := newTestStore(t)
	const jobCount = 8
	for i := 0; i < jobCount; i++ {
		stageJob(t, store, "echo")
	}

	var mu sync.Mutex
	seen := make(map[int64]int)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				job, err := store.ClaimNextStaged(context.Background())
				if err != nil {
					t.Errorf("claim error: %v", err)
					return
				}
				if job == nil {
					return
				}
				mu.Lock()
				seen[job.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != jobCount {
		t.Fatalf("expected %d distinct claims, got %d", jobCount, len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("job %d claimed %d times", id, count)
		}
	}
}

func TestMarkCleanedIsExactlyOnce(t *testing.T) {
	store := newTestStore(t)
	job := stageJob(t, store, "echo")

	claimed, err := store.MarkCleaned(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("MarkCleaned returned error: %v", err)
	}
	if !claimed {
		t.Fatal("first MarkCleaned must claim the token")
	}

	claimed, err = store.MarkCleaned(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("second MarkCleaned returned error: %v", err)
	}
	if claimed {
		t.Fatal("second MarkCleaned must be a no-op")
	}
}

func TestCancelWaitingOnlyAffectsPreProcessing(t *testing.T) {
	store := newTestStore(t)
	waiting := stageJob(t, store, "echo")

	processing := stageJob(t, store, "reverb")
	processing.Status = StatusProcessing
	if err := store.Update(context.Background(), processing); err != nil {
		t.Fatalf("update: %v", err)
	}

	ok, err := store.CancelWaiting(context.Background(), waiting.ID)
	if err != nil {
		t.Fatalf("CancelWaiting returned error: %v", err)
	}
	if !ok {
		t.Fatal("waiting job should cancel")
	}
	cancelled, _ := store.GetByID(context.Background(), waiting.ID)
	if cancelled.Status != StatusCancelled || cancelled.ErrorKind != ErrKindCancelled {
		t.Fatalf("unexpected cancelled row %+v", cancelled)
	}
	if cancelled.FinishedAt == nil {
		t.Fatal("cancellation must stamp FinishedAt")
	}

	ok, err = store.CancelWaiting(context.Background(), processing.ID)
	if err != nil {
		t.Fatalf("CancelWaiting returned error: %v", err)
	}
	if ok {
		t.Fatal("processing job must not be cancellable via CancelWaiting")
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := newTestStore(t)
	job := stageJob(t, store, "echo")
	if _, err := store.ClaimNextStaged(context.Background()); err != nil {
		t.Fatalf("claim: %v", err)
	}

	reset, err := store.ResetStuckProcessing(context.Background())
	if err != nil {
		t.Fatalf("ResetStuckProcessing returned error: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected one reset, got %d", reset)
	}

	fetched, _ := store.GetByID(context.Background(), job.ID)
	if fetched.Status != StatusStaged {
		t.Fatalf("expected staged after reset, got %s", fetched.Status)
	}
	if fetched.StartedAt != nil {
		t.Fatal("reset must clear StartedAt")
	}
}

func TestFailInFlightMarksNonTerminal(t *testing.T) {
	store := newTestStore(t)
	stageJob(t, store, "echo")

	done := stageJob(t, store, "reverb")
	done.Status = StatusCompleted
	if err := store.Update(context.Background(), done); err != nil {
		t.Fatalf("update: %v", err)
	}

	failed, err := store.FailInFlight(context.Background(), DaemonStopReason)
	if err != nil {
		t.Fatalf("FailInFlight returned error: %v", err)
	}
	if failed != 1 {
		t.Fatalf("expected one failed job, got %d", failed)
	}

	kept, _ := store.GetByID(context.Background(), done.ID)
	if kept.Status != StatusCompleted {
		t.Fatalf("completed job must be untouched, got %s", kept.Status)
	}
}

func TestHealthAggregates(t *testing.T) {
	store := newTestStore(t)
	stageJob(t, store, "echo")

	failedJob := stageJob(t, store, "reverb")
	failedJob.SetFailed(ErrKindEngineError, "boom")
	if err := store.Update(context.Background(), failedJob); err != nil {
		t.Fatalf("update: %v", err)
	}

	summary, err := store.Health(context.Background())
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if summary.Total != 2 || summary.Waiting != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestClearTerminal(t *testing.T) {
	store := newTestStore(t)
	keep := stageJob(t, store, "echo")

	gone := stageJob(t, store, "reverb")
	gone.SetFailed(ErrKindTimedOut, "too slow")
	if err := store.Update(context.Background(), gone); err != nil {
		t.Fatalf("update: %v", err)
	}

	removed, err := store.ClearTerminal(context.Background())
	if err != nil {
		t.Fatalf("ClearTerminal returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one removal, got %d", removed)
	}

	if job, _ := store.GetByID(context.Background(), keep.ID); job == nil {
		t.Fatal("staged job must survive clear")
	}
	if job, _ := store.GetByID(context.Background(), gone.ID); job != nil {
		t.Fatal("terminal job must be removed")
	}
}

package staging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAllocateAndRemove(t *testing.T) {
	root := t.TempDir()

	dir, err := Allocate(root, 42)
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if dir != filepath.Join(root, "job-42") {
		t.Fatalf("unexpected staging path %q", dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %q, err %v", dir, err)
	}

	if err := Remove(root, 42); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected directory gone, stat err %v", err)
	}

	// Removing again must be a no-op.
	if err := Remove(root, 42); err != nil {
		t.Fatalf("second Remove returned error: %v", err)
	}
}

func TestCleanStaleRemovesOnlyOldJobDirs(t *testing.T) {
	root := t.TempDir()

	stale := filepath.Join(root, "job-1")
	fresh := filepath.Join(root, "job-2")
	foreign := filepath.Join(root, "keepme")
	for _, dir := range []string{stale, fresh, foreign} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(foreign, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result := CleanStale(root, 24*time.Hour, nil)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected cleanup errors: %v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != stale {
		t.Fatalf("expected only the stale job directory removed, got %v", result.Removed)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh job directory should survive: %v", err)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Fatalf("foreign directory should survive: %v", err)
	}
}

func TestCleanStaleDisabled(t *testing.T) {
	result := CleanStale("", time.Hour, nil)
	if len(result.Removed) != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected no-op result, got %+v", result)
	}
}

func TestEnsureFreeSpace(t *testing.T) {
	root := t.TempDir()

	if err := EnsureFreeSpace(root, 1); err != nil {
		t.Fatalf("expected at least one free byte: %v", err)
	}
	if err := EnsureFreeSpace(root, 0); err != nil {
		t.Fatalf("zero minimum must disable the check: %v", err)
	}
}

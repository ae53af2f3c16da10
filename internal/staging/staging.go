// Package staging manages the per-job scratch directories the pipeline works
// in. Every job gets an isolated directory under the configured staging root;
// cleanup removes it exactly once, and boot-time sweeps reclaim leftovers
// from crashed runs.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"warble/internal/services"
)

// jobDirPrefix names per-job directories so stale sweeps can tell them apart
// from foreign files under the staging root.
const jobDirPrefix = "job-"

// DirName returns the staging directory name for a job.
func DirName(jobID int64) string {
	return fmt.Sprintf("%s%d", jobDirPrefix, jobID)
}

// Allocate creates the per-job staging directory and returns its path.
func Allocate(root string, jobID int64) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", services.Wrap(services.ErrConfiguration, "staging", "allocate", "staging root not configured", nil)
	}
	dir := filepath.Join(root, DirName(jobID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrStaging, "staging", "allocate", "create job directory", err)
	}
	return dir, nil
}

// Remove deletes the per-job staging directory and everything in it.
// Removing an already-removed directory is not an error.
func Remove(root string, jobID int64) error {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil
	}
	dir := filepath.Join(root, DirName(jobID))
	if err := os.RemoveAll(dir); err != nil {
		return services.Wrap(services.ErrStaging, "staging", "remove", "remove job directory", err)
	}
	return nil
}

// IsJobDir reports whether a directory name follows the per-job naming scheme.
func IsJobDir(name string) bool {
	return strings.HasPrefix(name, jobDirPrefix)
}

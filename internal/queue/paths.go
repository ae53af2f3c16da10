package queue

import (
	"fmt"
	"path/filepath"
	"strings"
)

// StagingRoot returns the per-job staging directory rooted at base. Directory
// names are derived from the job ID so no two jobs can share a staging path.
func (j Job) StagingRoot(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return filepath.Join(base, fmt.Sprintf("job-%d", j.ID))
}

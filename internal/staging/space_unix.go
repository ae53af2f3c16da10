//go:build unix

package staging

import (
	"fmt"

	"golang.org/x/sys/unix"

	"warble/internal/services"
)

// EnsureFreeSpace rejects new work when the staging filesystem is nearly
// full. A render can need several times the input size in scratch space, so
// the check runs before any bytes are copied in.
func EnsureFreeSpace(path string, minBytes int64) error {
	if minBytes <= 0 {
		return nil
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return services.Wrap(services.ErrStaging, "staging", "free space", "statfs staging root", err)
	}
	available := int64(stat.Bavail) * int64(stat.Bsize)
	if available < minBytes {
		return services.Wrap(services.ErrStaging, "staging", "free space",
			fmt.Sprintf("only %d bytes free, need %d", available, minBytes), nil)
	}
	return nil
}

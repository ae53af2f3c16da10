//go:build !unix

package staging

// EnsureFreeSpace is a no-op where statfs is unavailable.
func EnsureFreeSpace(path string, minBytes int64) error {
	return nil
}

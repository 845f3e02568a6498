//go:build !windows

package preflight

import (
	"golang.org/x/sys/unix"
)

// availableBytes returns the number of bytes available to an unprivileged
// user on the filesystem containing path.
func availableBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

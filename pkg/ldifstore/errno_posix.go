//go:build !windows

package ldifstore

import (
	"errors"
	"golang.org/x/sys/unix"
)

// isENOTEMPTY reports whether err wraps ENOTEMPTY, the errno rmdir/os.Remove
// returns for a non-empty directory on POSIX systems.
func isENOTEMPTY(err error) bool {
	return errors.Is(err, unix.ENOTEMPTY)
}

//go:build windows

package ldifstore

import "strings"

// isENOTEMPTY reports whether err is Windows' "directory is not empty"
// error. Windows does not expose this as a single stable sentinel the way
// POSIX's ENOTEMPTY is, so this falls back to matching the message text
// os.Remove surfaces from the underlying RemoveDirectory syscall failure.
func isENOTEMPTY(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not empty")
}

// Package buildinfo carries version and debug-flag information for the
// backend, in the same spirit as a project's top-level metadata package.
package buildinfo

import (
	"fmt"
	"os"
)

const (
	// VersionMajor is the current major version.
	VersionMajor = 0
	// VersionMinor is the current minor version.
	VersionMinor = 1
	// VersionPatch is the current patch version.
	VersionPatch = 0
)

// Version is the formatted version string.
var Version string

// DebugEnabled controls whether or not verbose debug logging is enabled. It
// is set automatically based on the LDIFSTORE_DEBUG environment variable.
var DebugEnabled bool

func init() {
	Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	DebugEnabled = os.Getenv("LDIFSTORE_DEBUG") == "1"
}

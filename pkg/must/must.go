// Package must provides helpers for performing cleanup operations whose
// errors can't sensibly be propagated (e.g. inside defer statements or on
// already-failing error paths) without silently discarding the failure.
package must

import (
	"io"
	"os"

	"github.com/Eldar88/openldap/pkg/logging"
)

// Close closes the given closer, logging a warning on failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove removes the named file, logging a warning on failure.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}

// Unlock unlocks the given locker, logging a warning on failure.
func Unlock(locker interface{ Unlock() error }, logger *logging.Logger) {
	if err := locker.Unlock(); err != nil {
		logger.Warnf("unable to unlock: %s", err.Error())
	}
}

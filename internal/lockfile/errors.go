package lockfile

import "errors"

// Sentinel errors for lock acquisition.
var (
	// ErrLockTimeout is returned when a lock cannot be acquired before
	// the configured timeout. Callers treat it as a skipped cycle.
	ErrLockTimeout = errors.New("lock acquisition timed out")
)

// Package lockfile provides exclusive-access file locks for the shared
// memory root. Invocations are separate short-lived processes, so mutual
// exclusion uses an atomic create-if-absent marker file rather than any
// in-process primitive.
package lockfile

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// Lock is a filesystem lock backed by a marker file. The marker exists
// exactly while the lock is held.
type Lock struct {
	// Path is the marker file location.
	Path string

	// Timeout bounds how long Acquire retries before failing.
	Timeout time.Duration

	// RetryDelay is the initial backoff between attempts; it doubles
	// after each failed attempt, with a small jitter.
	RetryDelay time.Duration
}

// New creates a lock for the given marker path.
func New(path string, timeout, retryDelay time.Duration) *Lock {
	return &Lock{
		Path:       path,
		Timeout:    timeout,
		RetryDelay: retryDelay,
	}
}

// Acquire takes the lock, retrying with doubling backoff until Timeout.
// Returns ErrLockTimeout when the deadline passes; callers treat that as
// "skip this cycle", never as fatal.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0700); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	deadline := time.Now().Add(l.Timeout)
	delay := l.RetryDelay
	if delay <= 0 {
		delay = 10 * time.Millisecond
	}

	for {
		err := l.tryAcquire()
		if err == nil {
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("create lock marker: %w", err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s after %s", ErrLockTimeout, l.Path, l.Timeout)
		}

		// Jitter avoids two waiters retrying in lockstep.
		sleep := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
		if remaining := time.Until(deadline); sleep > remaining {
			sleep = remaining
		}
		time.Sleep(sleep)
		delay *= 2
	}
}

// tryAcquire attempts a single exclusive create of the marker file.
func (l *Lock) tryAcquire() error {
	f, err := os.OpenFile(l.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	// Marker content is diagnostic only; holders are identified by the
	// marker's existence, not its content.
	fmt.Fprintf(f, "pid=%d acquired=%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
	return f.Close()
}

// Release removes the lock marker. Releasing an unheld lock is not an
// error, so Release is safe in deferred cleanup paths.
func (l *Lock) Release() error {
	err := os.Remove(l.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock marker: %w", err)
	}
	return nil
}

// WithLock runs fn while holding the lock, guaranteeing release on every
// exit path, including panics. fn's error is returned unchanged.
func (l *Lock) WithLock(fn func() error) error {
	if err := l.Acquire(); err != nil {
		return err
	}
	defer func() {
		_ = l.Release() //nolint:errcheck // release is best-effort on exit
	}()

	return fn()
}

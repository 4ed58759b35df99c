// Package storage provides the shared memory-root layout and crash-safe
// file primitives: atomic JSON writes, lenient JSON reads, and append-only
// JSONL records. Every on-disk file is always either the fully-old or the
// fully-new version; partial writes are never observable.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// LocksDir holds per-critical-section lock markers.
	LocksDir = "locks"

	// EventsFile is the append-only telemetry stream, foreign-owned.
	EventsFile = "events.jsonl"

	// CandidatesFile holds the unpromoted lesson pool.
	CandidatesFile = "candidates.json"

	// PlaybookFile holds the active lesson set.
	PlaybookFile = "playbook.json"

	// ArchiveFile holds write-once records of removed lessons.
	ArchiveFile = "archive.jsonl"

	// MarkerFile holds the last-analysis timestamp.
	MarkerFile = "last-analysis"

	// CandidatesLock guards the candidate file.
	CandidatesLock = "candidates.lock"

	// PlaybookLock guards the playbook file.
	PlaybookLock = "playbook.lock"
)

// Layout resolves paths under one memory root.
type Layout struct {
	// Root is the memory root directory (e.g., .playbook).
	Root string
}

// NewLayout creates a layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{Root: dir}
}

// Init creates the memory root and its lock directory.
func (l Layout) Init() error {
	for _, dir := range []string{l.Root, filepath.Join(l.Root, LocksDir)} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// EventsPath returns the event stream path.
func (l Layout) EventsPath() string { return filepath.Join(l.Root, EventsFile) }

// CandidatesPath returns the candidate pool path.
func (l Layout) CandidatesPath() string { return filepath.Join(l.Root, CandidatesFile) }

// PlaybookPath returns the active playbook path.
func (l Layout) PlaybookPath() string { return filepath.Join(l.Root, PlaybookFile) }

// ArchivePath returns the archive path.
func (l Layout) ArchivePath() string { return filepath.Join(l.Root, ArchiveFile) }

// MarkerPath returns the analysis marker path.
func (l Layout) MarkerPath() string { return filepath.Join(l.Root, MarkerFile) }

// CandidatesLockPath returns the candidate-file lock marker path.
func (l Layout) CandidatesLockPath() string {
	return filepath.Join(l.Root, LocksDir, CandidatesLock)
}

// PlaybookLockPath returns the playbook-file lock marker path.
func (l Layout) PlaybookLockPath() string {
	return filepath.Join(l.Root, LocksDir, PlaybookLock)
}

// WriteJSON writes v to path atomically: marshal, write to a temporary
// sibling, sync, then rename over the destination. On failure the prior
// file is untouched and no temp file survives.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return WriteFileAtomic(path, append(data, '\n'))
}

// ReadJSON reads path into v. A missing or unparsable file leaves v
// untouched and returns false; persistence errors never surface as
// failures to the caller.
func ReadJSON(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false
	}
	return true
}

// AppendJSONL marshals v and appends it as one line. Appends are durable
// (synced) but not atomic; readers skip any torn trailing line.
func AppendJSONL(path string, v any) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write line: %w", err)
	}

	return f.Sync()
}

// CountJSONLines returns the number of parsable JSON lines in path.
// Missing files count as zero.
func CountJSONLines(path string) (count int, err error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		var v json.RawMessage
		if json.Unmarshal(scanner.Bytes(), &v) == nil {
			count++
		}
	}
	return count, scanner.Err()
}

// maxLineBytes bounds a single JSONL line; longer lines are skipped.
const maxLineBytes = 1024 * 1024

// WriteFileAtomic writes data to a temp file in the destination
// directory, syncs it, and renames it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) //nolint:errcheck // cleanup in error path
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write content: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}

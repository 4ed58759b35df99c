// Package events reads the append-only telemetry stream and maintains the
// analysis marker. The stream is foreign-owned: one JSON event per line,
// written by the telemetry-capture collaborator. This engine only ever
// reads it, skipping anything it cannot parse.
package events

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/boshu2/playbook/internal/storage"
	"github.com/boshu2/playbook/internal/types"
)

// maxLineBytes bounds a single event line; longer lines are skipped.
const maxLineBytes = 1024 * 1024

// ReadSince returns events strictly after the marker timestamp, in file
// order. A zero marker means all history. Missing files and unparsable
// lines degrade to empty rather than erroring; only a read failure on an
// existing file surfaces.
func ReadSince(path string, marker time.Time) (evts []types.Event, err error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev types.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue // Skip malformed lines
		}
		if ev.ID == "" || ev.Timestamp.IsZero() {
			continue
		}
		if !ev.Timestamp.After(marker) {
			continue
		}
		ev.Outcome = types.ParseOutcome(string(ev.Outcome))
		evts = append(evts, ev)
	}

	return evts, scanner.Err()
}

// LoadMarker reads the last-analysis timestamp. A missing or unparsable
// marker means epoch: the first run analyzes all history.
func LoadMarker(path string) time.Time {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AdvanceMarker atomically writes the new last-analysis timestamp. The
// marker is owned exclusively by the pattern extractor and advances even
// on runs that produce nothing.
func AdvanceMarker(path string, t time.Time) error {
	return storage.WriteFileAtomic(path, []byte(t.UTC().Format(time.RFC3339Nano)+"\n"))
}

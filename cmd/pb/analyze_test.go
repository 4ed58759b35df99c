package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boshu2/playbook/internal/config"
	"github.com/boshu2/playbook/internal/events"
	"github.com/boshu2/playbook/internal/storage"
	"github.com/boshu2/playbook/internal/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.MemoryDir = t.TempDir()
	cfg.Lock.TimeoutMS = 500
	cfg.Lock.RetryDelayMS = 10
	return cfg
}

func writeEvents(t *testing.T, cfg *config.Config, evts []types.Event) {
	t.Helper()
	path := filepath.Join(cfg.MemoryDir, storage.EventsFile)
	for _, ev := range evts {
		if err := storage.AppendJSONL(path, ev); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}
}

func successEvents(n int, skill string, start time.Time) []types.Event {
	evts := make([]types.Event, n)
	for i := range evts {
		evts[i] = types.Event{
			ID:        fmt.Sprintf("e%d", i),
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Skill:     skill,
			Outcome:   types.OutcomeSuccess,
		}
	}
	return evts
}

func TestRunAnalyzeProducesCandidates(t *testing.T) {
	cfg := testConfig(t)
	start := time.Now().Add(-time.Hour)
	writeEvents(t, cfg, successEvents(5, "build", start))

	report, err := runAnalyze(cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}
	if report.Events != 5 || report.Candidates != 1 || report.Added != 1 {
		t.Errorf("report = %+v, want 5 events, 1 candidate", report)
	}

	var pool []types.Lesson
	layout := storage.NewLayout(cfg.MemoryDir)
	if !storage.ReadJSON(layout.CandidatesPath(), &pool) {
		t.Fatal("candidate pool not written")
	}
	if len(pool) != 1 {
		t.Fatalf("pool = %+v, want one candidate", pool)
	}

	// The marker advanced to the newest event timestamp.
	marker := events.LoadMarker(layout.MarkerPath())
	want := start.Add(4 * time.Minute)
	if !marker.Equal(want) {
		t.Errorf("marker = %v, want %v", marker, want)
	}
}

func TestRunAnalyzeBelowMinimumAdvancesMarkerOnly(t *testing.T) {
	cfg := testConfig(t)
	writeEvents(t, cfg, successEvents(3, "build", time.Now().Add(-time.Hour)))

	report, err := runAnalyze(cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}
	if report.Candidates != 0 {
		t.Errorf("report = %+v, want no candidates below analysis minimum", report)
	}

	layout := storage.NewLayout(cfg.MemoryDir)
	if _, err := os.Stat(layout.CandidatesPath()); !os.IsNotExist(err) {
		t.Error("no-op run created the candidate pool")
	}
	if events.LoadMarker(layout.MarkerPath()).IsZero() {
		t.Error("no-op run did not advance the marker")
	}

	// The same events are not reprocessed next run.
	report, err = runAnalyze(cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("second runAnalyze failed: %v", err)
	}
	if report.Events != 0 {
		t.Errorf("second run re-read %d events", report.Events)
	}
}

func TestRunAnalyzeDryRunWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	writeEvents(t, cfg, successEvents(5, "build", time.Now().Add(-time.Hour)))

	report, err := runAnalyze(cfg, zap.NewNop(), true)
	if err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}
	if report.Candidates != 1 {
		t.Errorf("report = %+v, want candidates computed", report)
	}

	layout := storage.NewLayout(cfg.MemoryDir)
	if _, err := os.Stat(layout.CandidatesPath()); !os.IsNotExist(err) {
		t.Error("dry run wrote the candidate pool")
	}
	if !events.LoadMarker(layout.MarkerPath()).IsZero() {
		t.Error("dry run advanced the marker")
	}
}

func TestRunAnalyzeMissingEventsFile(t *testing.T) {
	cfg := testConfig(t)

	report, err := runAnalyze(cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}
	if report.Events != 0 || report.Candidates != 0 {
		t.Errorf("report = %+v, want empty run", report)
	}
}

func TestMarkerTarget(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	evts := []types.Event{
		{Timestamp: base.Add(time.Minute)},
		{Timestamp: base.Add(3 * time.Minute)},
		{Timestamp: base.Add(2 * time.Minute)},
	}
	if got := markerTarget(evts); !got.Equal(base.Add(3 * time.Minute)) {
		t.Errorf("markerTarget = %v, want newest event time", got)
	}

	before := time.Now()
	got := markerTarget(nil)
	if got.Before(before) {
		t.Errorf("markerTarget(nil) = %v, want current time", got)
	}
}

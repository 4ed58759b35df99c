package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/boshu2/playbook/internal/types"
)

func sampleLessons() []types.Lesson {
	return []types.Lesson{
		{
			ID:              "l1",
			Problem:         "build fails with a timeout",
			Condition:       "when build runs",
			Solution:        "raise the limit",
			HelpfulCount:    8,
			NotHelpfulCount: 2,
			Confidence:      0.8,
			CreatedAt:       time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:         "l2",
			Problem:    strings.Repeat("very long problem text ", 10),
			Confidence: 0.5,
			CreatedAt:  time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestRenderLessonsTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderLessons(&buf, sampleLessons(), FormatTable); err != nil {
		t.Fatalf("RenderLessons failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ID", "CONFIDENCE", "l1", "0.80", "2026-06-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// The long problem must be clipped.
	if !strings.Contains(out, "...") {
		t.Errorf("long problem not truncated:\n%s", out)
	}
}

func TestRenderLessonsTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderLessons(&buf, nil, ""); err != nil {
		t.Fatalf("RenderLessons failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No lessons") {
		t.Errorf("output = %q, want empty-set message", buf.String())
	}
}

func TestRenderLessonsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderLessons(&buf, sampleLessons(), FormatJSON); err != nil {
		t.Fatalf("RenderLessons failed: %v", err)
	}

	var decoded []types.Lesson
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if len(decoded) != 2 || decoded[0].ID != "l1" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestRenderLessonsUnknownFormat(t *testing.T) {
	err := RenderLessons(&bytes.Buffer{}, nil, "yaml")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestTableAlignment(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "A", "LONGHEADER")
	tbl.AddRow("x", "y")
	tbl.AddRow("longer", "z")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header, separator, two rows", len(lines))
	}
	if !strings.HasPrefix(lines[1], "-") {
		t.Errorf("separator line = %q", lines[1])
	}
}

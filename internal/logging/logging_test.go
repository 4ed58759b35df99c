package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestDefaultLevelShowsSummaries(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	l.Debug("hidden detail")
	l.Info("summary line")
	l.Warn("warning line")
	if err := Sync(l); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "hidden detail") {
		t.Errorf("default logger emitted debug:\n%s", out)
	}
	if !strings.Contains(out, "summary line") {
		t.Errorf("default logger dropped the info summary:\n%s", out)
	}
	if !strings.Contains(out, "warning line") {
		t.Errorf("default logger dropped warning:\n%s", out)
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)
	l.Debug("visible now")
	if err := Sync(l); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !strings.Contains(buf.String(), "visible now") {
		t.Errorf("verbose logger dropped debug:\n%s", buf.String())
	}
}

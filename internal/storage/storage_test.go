package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type payload struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags,omitempty"`
}

func TestWriteReadJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	want := payload{Name: "build-timeout", Count: 3, Tags: []string{"a", "b"}}

	if err := WriteJSON(path, want); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var got payload
	if !ReadJSON(path, &got) {
		t.Fatal("ReadJSON reported failure")
	}
	if got.Name != want.Name || got.Count != want.Count || len(got.Tags) != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestWriteJSONLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	for i := 0; i < 2; i++ {
		if err := WriteJSON(path, payload{Count: i}); err != nil {
			t.Fatalf("WriteJSON #%d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp artifact survived: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected only the destination file, got %d entries", len(entries))
	}
}

func TestWriteJSONReplacesPriorContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	if err := WriteJSON(path, payload{Name: "old"}); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := WriteJSON(path, payload{Name: "new"}); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	var got payload
	if !ReadJSON(path, &got) {
		t.Fatal("ReadJSON reported failure")
	}
	if got.Name != "new" {
		t.Errorf("Name = %q, want new", got.Name)
	}
}

func TestReadJSONMissingFile(t *testing.T) {
	var got payload
	if ReadJSON(filepath.Join(t.TempDir(), "absent.json"), &got) {
		t.Error("ReadJSON reported success for missing file")
	}
}

func TestReadJSONCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	got := payload{Name: "untouched"}
	if ReadJSON(path, &got) {
		t.Error("ReadJSON reported success for corrupt file")
	}
	if got.Name != "untouched" {
		t.Error("destination mutated on failed read")
	}
}

func TestAppendJSONLAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")

	for i := 0; i < 3; i++ {
		if err := AppendJSONL(path, payload{Count: i}); err != nil {
			t.Fatalf("AppendJSONL #%d failed: %v", i, err)
		}
	}

	count, err := CountJSONLines(path)
	if err != nil {
		t.Fatalf("CountJSONLines failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestCountJSONLinesSkipsTornLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	content := `{"name":"ok"}` + "\n" + `{"name":"torn`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	count, err := CountJSONLines(path)
	if err != nil {
		t.Fatalf("CountJSONLines failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestCountJSONLinesMissingFile(t *testing.T) {
	count, err := CountJSONLines(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil {
		t.Fatalf("CountJSONLines failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestLayoutInit(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mem")
	l := NewLayout(root)

	if err := l.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, LocksDir)); err != nil {
		t.Errorf("locks dir not created: %v", err)
	}

	if l.CandidatesPath() != filepath.Join(root, "candidates.json") {
		t.Errorf("unexpected candidates path: %s", l.CandidatesPath())
	}
	if l.PlaybookLockPath() != filepath.Join(root, "locks", "playbook.lock") {
		t.Errorf("unexpected playbook lock path: %s", l.PlaybookLockPath())
	}
}

package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/boshu2/playbook/internal/types"
)

const humanWeight = 3

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name                       string
		helpful, notHelpful, human int
		want                       float64
	}{
		{"all helpful", 5, 0, 0, 1.0},
		{"all not helpful", 0, 7, 0, 0.0},
		{"zero evidence", 0, 0, 0, 0.0},
		{"human weighted", 1, 1, 1, 0.8}, // (1+3)/(1+3+1)
		{"half and half", 3, 3, 0, 0.5},
		{"human only", 0, 0, 2, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.helpful, tt.notHelpful, tt.human, humanWeight)
			if !almostEqual(got, tt.want) {
				t.Errorf("Confidence(%d,%d,%d) = %f, want %f",
					tt.helpful, tt.notHelpful, tt.human, got, tt.want)
			}
		})
	}
}

func TestConfidenceRange(t *testing.T) {
	for h := 0; h <= 10; h += 2 {
		for n := 0; n <= 10; n += 2 {
			for hu := 0; hu <= 4; hu++ {
				got := Confidence(h, n, hu, humanWeight)
				if got < 0 || got > 1 {
					t.Fatalf("Confidence(%d,%d,%d) = %f out of [0,1]", h, n, hu, got)
				}
			}
		}
	}
}

func TestClampCount(t *testing.T) {
	const max = 1000

	tests := []struct {
		n, want int
	}{
		{-5, 0},
		{0, 0},
		{500, 500},
		{max, max},
		{max + 100, max},
	}
	for _, tt := range tests {
		if got := ClampCount(tt.n, max); got != tt.want {
			t.Errorf("ClampCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}

	if got := AddClamped(max-1, 1, max); got != max {
		t.Errorf("AddClamped(max-1, 1) = %d, want %d", got, max)
	}
	if got := AddClamped(max+100, 1, max); got != max {
		t.Errorf("AddClamped(max+100, 1) = %d, want %d", got, max)
	}
}

func testBounds() Bounds {
	return Bounds{MaxCount: 1000, MaxSourceEvents: 20, HumanWeight: humanWeight}
}

func TestMergeCountsAndConfidence(t *testing.T) {
	b := testBounds()
	dst := types.Lesson{
		ID:              "keep-me",
		HelpfulCount:    3,
		NotHelpfulCount: 1,
		SourceEvents:    []string{"e1", "e2"},
		CreatedAt:       time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	src := types.Lesson{
		ID:                 "discarded",
		HelpfulCount:       2,
		NotHelpfulCount:    1,
		HumanFeedbackCount: 1,
		SourceEvents:       []string{"e2", "e3"},
		CreatedAt:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	got := Merge(dst, src, b)

	if got.ID != "keep-me" {
		t.Errorf("ID = %q, want keep-me", got.ID)
	}
	if got.HelpfulCount != 5 || got.NotHelpfulCount != 2 || got.HumanFeedbackCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 5/2/1",
			got.HelpfulCount, got.NotHelpfulCount, got.HumanFeedbackCount)
	}
	want := Confidence(5, 2, 1, humanWeight)
	if !almostEqual(got.Confidence, want) {
		t.Errorf("Confidence = %f, want %f", got.Confidence, want)
	}
	if len(got.SourceEvents) != 3 {
		t.Errorf("SourceEvents = %v, want union of 3", got.SourceEvents)
	}
	if !got.CreatedAt.Equal(src.CreatedAt) {
		t.Errorf("CreatedAt = %s, want the earlier %s", got.CreatedAt, src.CreatedAt)
	}
}

func TestMergeRespectsBounds(t *testing.T) {
	b := Bounds{MaxCount: 10, MaxSourceEvents: 3, HumanWeight: humanWeight}

	dst := types.Lesson{HelpfulCount: 8, SourceEvents: []string{"a", "b"}}
	src := types.Lesson{HelpfulCount: 8, SourceEvents: []string{"c", "d", "e"}}

	got := Merge(dst, src, b)

	if got.HelpfulCount != 10 {
		t.Errorf("HelpfulCount = %d, want clamped 10", got.HelpfulCount)
	}
	if len(got.SourceEvents) != 3 {
		t.Errorf("SourceEvents length = %d, want 3", len(got.SourceEvents))
	}
	if got.Confidence < 0 || got.Confidence > 1 {
		t.Errorf("Confidence = %f out of range", got.Confidence)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	dst := types.Lesson{HelpfulCount: 1, SourceEvents: []string{"a"}}
	src := types.Lesson{HelpfulCount: 2, SourceEvents: []string{"b"}}

	_ = Merge(dst, src, testBounds())

	if dst.HelpfulCount != 1 || len(dst.SourceEvents) != 1 {
		t.Error("dst mutated by Merge")
	}
	if src.HelpfulCount != 2 || len(src.SourceEvents) != 1 {
		t.Error("src mutated by Merge")
	}
}

func TestNormalize(t *testing.T) {
	b := Bounds{MaxCount: 5, MaxSourceEvents: 2, HumanWeight: humanWeight}
	raw := types.Lesson{
		HelpfulCount:    100,
		NotHelpfulCount: -3,
		Confidence:      42.0, // bogus stored value, must be recomputed
		SourceEvents:    []string{"a", "b", "c"},
	}

	got := Normalize(raw, b)

	if got.HelpfulCount != 5 || got.NotHelpfulCount != 0 {
		t.Errorf("counts = %d/%d, want 5/0", got.HelpfulCount, got.NotHelpfulCount)
	}
	if len(got.SourceEvents) != 2 {
		t.Errorf("SourceEvents length = %d, want 2", len(got.SourceEvents))
	}
	if !almostEqual(got.Confidence, 1.0) {
		t.Errorf("Confidence = %f, want 1.0", got.Confidence)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "build failed with timeout", "build failed with timeout", 1},
		{"both empty", "", "", 0},
		{"one empty", "build failed", "", 0},
		{"disjoint", "network unreachable", "syntax problem", 0},
		{"case and punctuation insensitive", "Build FAILED!", "build failed", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityRange(t *testing.T) {
	pairs := [][2]string{
		{"the build failed on timeout", "the build failed on network"},
		{"a b c d", "c d e f"},
		{"one", "one two three four five"},
	}
	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Similarity(%q, %q) = %f out of [0,1]", p[0], p[1], got)
		}
		if inverse := Similarity(p[1], p[0]); !almostEqual(got, inverse) {
			t.Errorf("Similarity not symmetric for %v: %f vs %f", p, got, inverse)
		}
	}
}

func TestLessonSimilarity(t *testing.T) {
	a := types.Lesson{
		Problem:   "build command fails with timeout errors",
		Condition: "when running the build skill",
		Solution:  "increase the timeout and retry once",
	}
	same := a
	if got := LessonSimilarity(a, same); !almostEqual(got, 1) {
		t.Errorf("identical lessons score %f, want 1", got)
	}

	other := types.Lesson{
		Problem:   "completely unrelated database migration drift",
		Condition: "during schema upgrades in production",
		Solution:  "regenerate migrations from the model",
	}
	if got := LessonSimilarity(a, other); got >= 0.85 {
		t.Errorf("unrelated lessons score %f, expected below threshold", got)
	}
}

func TestExactMatch(t *testing.T) {
	a := types.Lesson{Problem: "p", Condition: "c", Solution: "s1"}
	b := types.Lesson{Problem: "p", Condition: "c", Solution: "s2"}
	c := types.Lesson{Problem: "p", Condition: "other", Solution: "s1"}

	if !ExactMatch(a, b) {
		t.Error("same problem+condition should match regardless of solution")
	}
	if ExactMatch(a, c) {
		t.Error("different condition should not match")
	}
}

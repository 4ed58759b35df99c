package scoring

import (
	"github.com/boshu2/playbook/internal/types"
)

// Bounds parameterizes the merge: counter ceiling, source-event cap, and
// the human feedback weight for confidence recomputation. One merge
// function serves both the candidate store (exact duplicates) and the
// curator (fuzzy duplicates), so the two policies cannot drift apart.
type Bounds struct {
	// MaxCount is the clamp ceiling for each evidence counter.
	MaxCount int

	// MaxSourceEvents is the cap on retained source-event IDs.
	MaxSourceEvents int

	// HumanWeight is the confidence model's human feedback multiplier.
	HumanWeight int
}

// Merge folds src into dst: counts are summed and clamped, source events
// unioned, deduplicated, and truncated, and confidence recomputed from
// the merged counts. dst keeps its identity and the earlier CreatedAt.
// The result is a new lesson; neither input is mutated.
func Merge(dst, src types.Lesson, b Bounds) types.Lesson {
	merged := dst

	merged.HelpfulCount = AddClamped(ClampCount(dst.HelpfulCount, b.MaxCount), ClampCount(src.HelpfulCount, b.MaxCount), b.MaxCount)
	merged.NotHelpfulCount = AddClamped(ClampCount(dst.NotHelpfulCount, b.MaxCount), ClampCount(src.NotHelpfulCount, b.MaxCount), b.MaxCount)
	merged.HumanFeedbackCount = AddClamped(ClampCount(dst.HumanFeedbackCount, b.MaxCount), ClampCount(src.HumanFeedbackCount, b.MaxCount), b.MaxCount)

	merged.SourceEvents = unionTruncate(dst.SourceEvents, src.SourceEvents, b.MaxSourceEvents)

	if !src.CreatedAt.IsZero() && (dst.CreatedAt.IsZero() || src.CreatedAt.Before(dst.CreatedAt)) {
		merged.CreatedAt = src.CreatedAt
	}

	merged.Confidence = Confidence(merged.HelpfulCount, merged.NotHelpfulCount, merged.HumanFeedbackCount, b.HumanWeight)
	return merged
}

// Normalize clamps a lesson's counters and source events to bounds and
// recomputes its confidence. Used when loading records whose producer may
// have violated the invariants.
func Normalize(l types.Lesson, b Bounds) types.Lesson {
	l.HelpfulCount = ClampCount(l.HelpfulCount, b.MaxCount)
	l.NotHelpfulCount = ClampCount(l.NotHelpfulCount, b.MaxCount)
	l.HumanFeedbackCount = ClampCount(l.HumanFeedbackCount, b.MaxCount)
	if len(l.SourceEvents) > b.MaxSourceEvents {
		l.SourceEvents = append([]string(nil), l.SourceEvents[:b.MaxSourceEvents]...)
	}
	l.Confidence = Confidence(l.HelpfulCount, l.NotHelpfulCount, l.HumanFeedbackCount, b.HumanWeight)
	return l
}

// unionTruncate merges two ID lists preserving first-seen order, dropping
// duplicates, and truncating to max.
func unionTruncate(a, b []string, max int) []string {
	if max <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
			if len(out) == max {
				return out
			}
		}
	}
	return out
}

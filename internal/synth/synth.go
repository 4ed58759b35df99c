// Package synth renders lesson candidates from evidence clusters. Text
// comes from the taxonomy's deterministic template table; confidence
// comes from the cluster's outcome counts. Human feedback never
// originates here; it is added later by the feedback collaborator.
package synth

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/boshu2/playbook/internal/extract"
	"github.com/boshu2/playbook/internal/scoring"
	"github.com/boshu2/playbook/internal/taxonomy"
	"github.com/boshu2/playbook/internal/types"
)

// Synthesizer turns pattern groups into lesson candidates.
type Synthesizer struct {
	// Bounds clamps counters and truncates source events on emission.
	Bounds scoring.Bounds

	// Now supplies candidate creation timestamps; swappable in tests.
	Now func() time.Time

	// NewID mints candidate IDs; swappable in tests.
	NewID func() string
}

// New creates a synthesizer with the given bounds.
func New(b scoring.Bounds) *Synthesizer {
	return &Synthesizer{
		Bounds: b,
		Now:    time.Now,
		NewID:  func() string { return fmt.Sprintf("cand-%s", uuid.NewString()) },
	}
}

// Synthesize renders one candidate per group, in group order.
func (s *Synthesizer) Synthesize(groups []extract.Group) []types.Lesson {
	if len(groups) == 0 {
		return nil
	}

	lessons := make([]types.Lesson, 0, len(groups))
	for _, g := range groups {
		lessons = append(lessons, s.synthesizeOne(g))
	}
	return lessons
}

// synthesizeOne renders a single group.
func (s *Synthesizer) synthesizeOne(g extract.Group) types.Lesson {
	class := classify(g)
	problem, condition, solution := taxonomy.TemplateFor(class).Render(g.Skill)

	supporting, contradicting := evidence(g, class)

	lesson := types.Lesson{
		ID:              s.NewID(),
		Problem:         problem,
		Condition:       condition,
		Solution:        solution,
		HelpfulCount:    supporting,
		NotHelpfulCount: contradicting,
		CreatedAt:       s.Now().UTC(),
		SourceEvents:    append([]string(nil), g.EventIDs...),
	}

	// Normalize clamps the counters, truncates source events, and
	// derives confidence from the clamped counts.
	return scoring.Normalize(lesson, s.Bounds)
}

// classify picks the template class for a group. Error-keyed groups use
// the failure taxonomy; success-keyed groups are success-dominant or
// mixed depending on their outcome split.
func classify(g extract.Group) taxonomy.ErrorClass {
	if g.ErrorKey != extract.SuccessKey {
		return taxonomy.Classify(g.ErrorKey)
	}
	if g.SuccessCount > g.FailureCount+g.PartialCount {
		return taxonomy.ClassSuccess
	}
	return taxonomy.ClassMixed
}

// evidence splits a group's events into those supporting the rendered
// lesson and those contradicting it. For failure-class lessons the
// failures are the supporting evidence: they are what demonstrates the
// pattern the lesson teaches.
func evidence(g extract.Group, class taxonomy.ErrorClass) (supporting, contradicting int) {
	switch class {
	case taxonomy.ClassSuccess:
		return g.SuccessCount, g.FailureCount + g.PartialCount
	case taxonomy.ClassMixed:
		// A mixed lesson is evidenced by its inconsistency; neither side
		// dominates, so the split carries through unchanged.
		return g.SuccessCount, g.FailureCount + g.PartialCount
	default:
		return g.FailureCount + g.PartialCount, g.SuccessCount
	}
}

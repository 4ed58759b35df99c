// Package extract groups raw telemetry events into evidence clusters.
// A cluster is keyed by (skill, error type or "success") and exists only
// for the duration of one analysis run; nothing here is persisted.
package extract

import (
	"github.com/boshu2/playbook/internal/types"
)

// SuccessKey is the group key for events without an error type.
const SuccessKey = "success"

// Group is an aggregate over events sharing one key within a single
// analysis run.
type Group struct {
	// Skill is the skill or command the events came from.
	Skill string

	// ErrorKey is the error type, or SuccessKey for clean events.
	ErrorKey string

	// SuccessCount tallies success outcomes.
	SuccessCount int

	// FailureCount tallies failure outcomes.
	FailureCount int

	// PartialCount tallies partial outcomes.
	PartialCount int

	// EventIDs lists the member event IDs in stream order.
	EventIDs []string
}

// Size returns the number of events in the group.
func (g *Group) Size() int {
	return g.SuccessCount + g.FailureCount + g.PartialCount
}

// key returns the grouping key for an event.
func key(ev types.Event) (skill, errorKey string) {
	errorKey = ev.ErrorType
	if errorKey == "" {
		errorKey = SuccessKey
	}
	return ev.Skill, errorKey
}

// Extract clusters events into groups, dropping groups smaller than
// minPattern. When fewer than minAnalysis events are eligible the whole
// run yields nothing; callers still advance the marker. Group order is
// deterministic: first appearance in the stream.
func Extract(evts []types.Event, minAnalysis, minPattern int) []Group {
	if len(evts) < minAnalysis {
		return nil
	}

	type groupKey struct {
		skill    string
		errorKey string
	}

	index := make(map[groupKey]int)
	var groups []Group

	for _, ev := range evts {
		if ev.Skill == "" {
			continue
		}
		skill, errorKey := key(ev)
		gk := groupKey{skill: skill, errorKey: errorKey}

		i, ok := index[gk]
		if !ok {
			i = len(groups)
			index[gk] = i
			groups = append(groups, Group{Skill: skill, ErrorKey: errorKey})
		}

		g := &groups[i]
		switch ev.Outcome {
		case types.OutcomeSuccess:
			g.SuccessCount++
		case types.OutcomeFailure:
			g.FailureCount++
		default:
			g.PartialCount++
		}
		g.EventIDs = append(g.EventIDs, ev.ID)
	}

	// Keep only groups with enough evidence.
	kept := groups[:0]
	for _, g := range groups {
		if g.Size() >= minPattern {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

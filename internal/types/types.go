// Package types defines all data structures shared across the playbook
// lesson pipeline: telemetry events in, lessons and archive records out.
package types

import (
	"strings"
	"time"
)

// Outcome is the result classification of a single telemetry event.
type Outcome string

const (
	// OutcomeSuccess means the skill or command completed cleanly.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure means the skill or command failed.
	OutcomeFailure Outcome = "failure"

	// OutcomePartial means the skill or command partially succeeded.
	OutcomePartial Outcome = "partial"
)

// ParseOutcome normalizes outcome input, falling back to partial for
// unknown values so a malformed producer never aborts an analysis run.
func ParseOutcome(raw string) Outcome {
	switch Outcome(strings.ToLower(strings.TrimSpace(raw))) {
	case OutcomeSuccess:
		return OutcomeSuccess
	case OutcomeFailure:
		return OutcomeFailure
	default:
		return OutcomePartial
	}
}

// Event is one telemetry record from the assistant's execution stream.
// Events are append-only and foreign-owned: the engine reads them and
// never mutates or deletes them.
type Event struct {
	// ID is the producer-assigned event identifier.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Skill is the skill or command that produced the event.
	Skill string `json:"skill"`

	// Outcome classifies the result (success, failure, partial).
	Outcome Outcome `json:"outcome"`

	// ErrorType is the failure taxonomy key, empty on success.
	ErrorType string `json:"error_type,omitempty"`

	// Context carries producer-specific metadata, opaque to the engine.
	Context map[string]any `json:"context,omitempty"`
}

// Lesson is a problem/condition/solution triple with evidence counters.
// The same shape serves both pool candidates and active playbook entries;
// which file it lives in determines its lifecycle stage.
type Lesson struct {
	// ID is the unique lesson identifier.
	ID string `json:"id"`

	// Problem describes what went wrong (or what worked).
	Problem string `json:"problem"`

	// Condition describes when the lesson applies.
	Condition string `json:"condition"`

	// Solution describes what to do about it.
	Solution string `json:"solution"`

	// HelpfulCount is the number of positive outcome signals.
	HelpfulCount int `json:"helpful_count"`

	// NotHelpfulCount is the number of negative outcome signals.
	NotHelpfulCount int `json:"not_helpful_count"`

	// HumanFeedbackCount is the number of explicit human judgments.
	// Populated by the feedback collaborator, never by this engine.
	HumanFeedbackCount int `json:"human_feedback_count"`

	// Confidence is derived from the three counts and never set directly.
	Confidence float64 `json:"confidence"`

	// CreatedAt is when the lesson was first synthesized.
	CreatedAt time.Time `json:"created_at"`

	// SourceEvents lists the event IDs this lesson was learned from.
	SourceEvents []string `json:"source_events,omitempty"`
}

// TotalOutcomes returns the number of automatic outcome signals.
func (l *Lesson) TotalOutcomes() int {
	return l.HelpfulCount + l.NotHelpfulCount
}

// SuccessRate returns the helpful fraction of outcome signals,
// or 0 when there are none.
func (l *Lesson) SuccessRate() float64 {
	total := l.TotalOutcomes()
	if total == 0 {
		return 0
	}
	return float64(l.HelpfulCount) / float64(total)
}

// ArchiveReason explains why a lesson left its live file.
type ArchiveReason string

const (
	// ReasonStaleAge marks a lesson pruned for exceeding the age limit.
	ReasonStaleAge ArchiveReason = "stale-age"

	// ReasonLowSuccessRate marks a lesson pruned for poor performance.
	ReasonLowSuccessRate ArchiveReason = "low-success-rate"

	// ReasonCapOverflow marks a lesson displaced by the playbook cap.
	ReasonCapOverflow ArchiveReason = "cap-overflow"

	// ReasonPoolStale marks an unpromoted candidate dropped for age.
	ReasonPoolStale ArchiveReason = "pool-stale"

	// ReasonPoolOverflow marks a candidate displaced by the pool cap.
	ReasonPoolOverflow ArchiveReason = "pool-overflow"
)

// ArchiveRecord is a write-once copy of a removed lesson. Records are
// appended for audit only and never read back by the engine.
type ArchiveRecord struct {
	// Lesson is the removed lesson, captured as-is.
	Lesson Lesson `json:"lesson"`

	// Reason is why the lesson was removed.
	Reason ArchiveReason `json:"reason"`

	// ArchivedAt is when the removal happened.
	ArchivedAt time.Time `json:"archived_at"`
}

// TriggerKind names a lifecycle event delivered by the host.
type TriggerKind string

const (
	// TriggerSessionEnd fires when an assistant session ends.
	TriggerSessionEnd TriggerKind = "session-end"

	// TriggerPreCompact fires before the host compacts its context.
	TriggerPreCompact TriggerKind = "pre-compact"

	// TriggerSessionStart fires when an assistant session begins.
	TriggerSessionStart TriggerKind = "session-start"
)

// Trigger is the small record the host writes to describe a lifecycle
// event. Unrecognized kinds are a no-op; extra payload fields from the
// host are accepted and ignored.
type Trigger struct {
	// Kind names the lifecycle event.
	Kind TriggerKind `json:"kind"`

	// SessionID is the host session identifier, informational only.
	SessionID string `json:"session_id,omitempty"`
}

// ParseTriggerKind normalizes trigger input. Hosts disagree on naming, so
// common aliases map onto the canonical kinds; anything else is returned
// as-is for the dispatcher to treat as a no-op.
func ParseTriggerKind(raw string) TriggerKind {
	kind := TriggerKind(strings.ToLower(strings.TrimSpace(raw)))
	switch kind {
	case "stop", "sessionend", "session_end":
		return TriggerSessionEnd
	case "precompact", "pre_compact", "compact":
		return TriggerPreCompact
	case "sessionstart", "session_start", "start":
		return TriggerSessionStart
	}
	return kind
}

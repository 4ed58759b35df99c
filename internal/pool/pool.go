// Package pool persists the candidate lesson pool: synthesized lessons
// waiting for enough confidence to enter the active playbook. The store
// only grows or exact-merges; promotion and pruning belong to the
// curator.
package pool

import (
	"fmt"

	"github.com/boshu2/playbook/internal/lockfile"
	"github.com/boshu2/playbook/internal/scoring"
	"github.com/boshu2/playbook/internal/storage"
	"github.com/boshu2/playbook/internal/types"
)

// Store manages the candidate pool file.
type Store struct {
	// Layout resolves the candidate file path.
	Layout storage.Layout

	// Lock guards the candidate file's read-modify-write cycle.
	Lock *lockfile.Lock

	// Bounds parameterizes merging and load-time normalization.
	Bounds scoring.Bounds
}

// NewStore creates a candidate store over the given layout.
func NewStore(layout storage.Layout, lock *lockfile.Lock, bounds scoring.Bounds) *Store {
	return &Store{Layout: layout, Lock: lock, Bounds: bounds}
}

// Load returns the current pool. A missing or unparsable file is an
// empty pool; loading never fails. Records are normalized so stale
// counts from older writers cannot propagate.
func (s *Store) Load() []types.Lesson {
	var raw []types.Lesson
	if !storage.ReadJSON(s.Layout.CandidatesPath(), &raw) {
		return nil
	}

	lessons := make([]types.Lesson, 0, len(raw))
	for _, l := range raw {
		if l.ID == "" {
			continue
		}
		lessons = append(lessons, scoring.Normalize(l, s.Bounds))
	}
	if len(lessons) == 0 {
		return nil
	}
	return lessons
}

// SaveReport summarizes one Save call.
type SaveReport struct {
	// Merged is how many incoming candidates folded into existing ones.
	Merged int

	// Added is how many incoming candidates were appended as new.
	Added int

	// Total is the pool size after the write.
	Total int
}

// Save folds new candidates into the pool under the candidate lock. An
// incoming candidate with an exact problem+condition match merges into
// the existing entry (sum-and-clamp counts, recompute confidence, union
// source events); anything else appends. The pool file is rewritten
// atomically.
func (s *Store) Save(newCandidates []types.Lesson) (SaveReport, error) {
	var report SaveReport
	if len(newCandidates) == 0 {
		return report, nil
	}

	err := s.Lock.WithLock(func() error {
		existing := s.Load()

		for _, candidate := range newCandidates {
			if i := findExact(existing, candidate); i >= 0 {
				existing[i] = scoring.Merge(existing[i], candidate, s.Bounds)
				report.Merged++
				continue
			}
			existing = append(existing, scoring.Normalize(candidate, s.Bounds))
			report.Added++
		}

		report.Total = len(existing)
		if err := storage.WriteJSON(s.Layout.CandidatesPath(), existing); err != nil {
			return fmt.Errorf("write candidate pool: %w", err)
		}
		return nil
	})
	if err != nil {
		return SaveReport{}, err
	}
	return report, nil
}

// findExact returns the index of the lesson sharing candidate's
// problem+condition key, or -1.
func findExact(lessons []types.Lesson, candidate types.Lesson) int {
	for i := range lessons {
		if scoring.ExactMatch(lessons[i], candidate) {
			return i
		}
	}
	return -1
}

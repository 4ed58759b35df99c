// Package curator runs the playbook maintenance transaction: promoting
// qualified candidates into the active set, merging fuzzy duplicates,
// pruning stale or poor performers, and enforcing the size caps. One
// invocation is one locked transaction spanning the candidate file and
// the playbook file.
package curator

import (
	"fmt"
	"sort"
	"time"

	"github.com/boshu2/playbook/internal/config"
	"github.com/boshu2/playbook/internal/lockfile"
	"github.com/boshu2/playbook/internal/scoring"
	"github.com/boshu2/playbook/internal/storage"
	"github.com/boshu2/playbook/internal/types"
)

// Curator owns the promotion/pruning/cap pass over the shared files.
type Curator struct {
	// Layout resolves the candidate, playbook, and archive paths.
	Layout storage.Layout

	// CandidatesLock guards the candidate file. Acquired first.
	CandidatesLock *lockfile.Lock

	// PlaybookLock guards the playbook file. Acquired second; the
	// candidate store never takes it, so the ordering cannot deadlock.
	PlaybookLock *lockfile.Lock

	// Engine holds the lifecycle thresholds.
	Engine config.EngineConfig

	// Bounds parameterizes merges and normalization.
	Bounds scoring.Bounds

	// Now supplies the transaction timestamp; swappable in tests.
	Now func() time.Time

	// DryRun computes the full report without writing anything.
	DryRun bool
}

// New creates a curator over the given layout and config.
func New(layout storage.Layout, cfg *config.Config) *Curator {
	return &Curator{
		Layout:         layout,
		CandidatesLock: lockfile.New(layout.CandidatesLockPath(), cfg.Lock.Timeout(), cfg.Lock.RetryDelay()),
		PlaybookLock:   lockfile.New(layout.PlaybookLockPath(), cfg.Lock.Timeout(), cfg.Lock.RetryDelay()),
		Engine:         cfg.Engine,
		Bounds: scoring.Bounds{
			MaxCount:        cfg.Engine.MaxCount,
			MaxSourceEvents: cfg.Engine.MaxSourceEvents,
			HumanWeight:     cfg.Engine.HumanWeight,
		},
		Now: time.Now,
	}
}

// Report summarizes one curation pass.
type Report struct {
	// Promoted is how many candidates entered the playbook as new lessons.
	Promoted int `json:"promoted"`

	// MergedActive is how many candidates folded into existing lessons.
	MergedActive int `json:"merged_active"`

	// DedupedActive is how many pre-existing active duplicates collapsed.
	DedupedActive int `json:"deduped_active"`

	// PrunedStale is how many active lessons were archived for age.
	PrunedStale int `json:"pruned_stale"`

	// PrunedLowSuccess is how many were archived for poor success rate.
	PrunedLowSuccess int `json:"pruned_low_success"`

	// Overflow is how many were archived by the playbook cap.
	Overflow int `json:"overflow"`

	// PoolStale is how many unpromoted candidates were archived for age.
	PoolStale int `json:"pool_stale"`

	// PoolOverflow is how many candidates were archived by the pool cap.
	PoolOverflow int `json:"pool_overflow"`

	// ActiveTotal is the playbook size after the pass.
	ActiveTotal int `json:"active_total"`

	// PoolTotal is the candidate pool size after the pass.
	PoolTotal int `json:"pool_total"`
}

// Curate runs one full maintenance pass. Both locks are held for the
// whole transaction so promotion and pruning see a single consistent
// snapshot of the active set. A lock timeout surfaces unwrapped; callers
// treat it as a skipped cycle.
func (c *Curator) Curate() (Report, error) {
	var report Report

	err := c.CandidatesLock.WithLock(func() error {
		return c.PlaybookLock.WithLock(func() error {
			var err error
			report, err = c.curateLocked()
			return err
		})
	})
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// curateLocked is the transaction body; both locks are held.
func (c *Curator) curateLocked() (Report, error) {
	var report Report
	now := c.Now().UTC()

	candidates := c.loadLessons(c.Layout.CandidatesPath())
	active := c.loadLessons(c.Layout.PlaybookPath())

	// Step 1: promotion. Qualified candidates move into the active set,
	// merging into a fuzzy duplicate when one exists. Sub-threshold
	// candidates are carried over unchanged.
	var remaining []types.Lesson
	for _, cand := range candidates {
		if cand.Confidence < c.Engine.ConfidenceThreshold {
			remaining = append(remaining, cand)
			continue
		}
		if i := c.findSimilar(active, cand); i >= 0 {
			active[i] = scoring.Merge(active[i], cand, c.Bounds)
			report.MergedActive++
			continue
		}
		active = append(active, cand)
		report.Promoted++
	}

	// Collapse any pre-existing duplicate pairs so the dedup invariant
	// holds even over playbooks written by older versions.
	active, report.DedupedActive = c.dedupeActive(active)

	// The pool gets the symmetric treatment: stale candidates age out
	// and the pool is capped by confidence.
	var poolArchive []types.ArchiveRecord
	remaining, poolArchive, report.PoolStale = c.pruneStaleCandidates(remaining, now)
	capped, overflowArchive := capByConfidence(remaining, c.Engine.MaxCandidates, types.ReasonPoolOverflow, now)
	remaining = capped
	poolArchive = append(poolArchive, overflowArchive...)
	report.PoolOverflow = len(overflowArchive)

	// Step 2: pruning. Stale or poor-performing active lessons move to
	// the archive.
	var activeArchive []types.ArchiveRecord
	active, activeArchive = c.pruneActive(active, now)
	for _, rec := range activeArchive {
		switch rec.Reason {
		case types.ReasonStaleAge:
			report.PrunedStale++
		case types.ReasonLowSuccessRate:
			report.PrunedLowSuccess++
		}
	}

	// Step 3: cap enforcement on the active set.
	capped, overflowArchive = capByConfidence(active, c.Engine.MaxDeltas, types.ReasonCapOverflow, now)
	active = capped
	activeArchive = append(activeArchive, overflowArchive...)
	report.Overflow = len(overflowArchive)

	report.ActiveTotal = len(active)
	report.PoolTotal = len(remaining)

	if c.DryRun {
		return report, nil
	}

	// Archive records land before the live files are rewritten. A crash
	// between the two leaves a lesson both archived and live; the next
	// pass prunes it again and appends a second record. The archive is
	// append-only and never read back, so at-least-once is the right
	// trade against ever losing a removal record.
	for _, rec := range append(poolArchive, activeArchive...) {
		if err := storage.AppendJSONL(c.Layout.ArchivePath(), rec); err != nil {
			return report, fmt.Errorf("append archive: %w", err)
		}
	}

	// The playbook lands first: a crash between the two writes leaves
	// promoted lessons in both files, and the next pass re-merges them
	// instead of losing them.
	if err := storage.WriteJSON(c.Layout.PlaybookPath(), active); err != nil {
		return report, fmt.Errorf("write playbook: %w", err)
	}
	if err := storage.WriteJSON(c.Layout.CandidatesPath(), remaining); err != nil {
		return report, fmt.Errorf("write candidate pool: %w", err)
	}

	return report, nil
}

// loadLessons reads a lesson file leniently, normalizing every record.
func (c *Curator) loadLessons(path string) []types.Lesson {
	var raw []types.Lesson
	if !storage.ReadJSON(path, &raw) {
		return nil
	}
	lessons := make([]types.Lesson, 0, len(raw))
	for _, l := range raw {
		if l.ID == "" {
			continue
		}
		lessons = append(lessons, scoring.Normalize(l, c.Bounds))
	}
	return lessons
}

// findSimilar returns the index of the first active lesson whose
// composite similarity with cand reaches the dedup threshold, or -1.
func (c *Curator) findSimilar(active []types.Lesson, cand types.Lesson) int {
	for i := range active {
		if scoring.LessonSimilarity(active[i], cand) >= c.Engine.DedupThreshold {
			return i
		}
	}
	return -1
}

// dedupeActive collapses active lessons that duplicate an earlier entry.
func (c *Curator) dedupeActive(active []types.Lesson) ([]types.Lesson, int) {
	merged := 0
	var out []types.Lesson
	for _, l := range active {
		if i := c.findSimilar(out, l); i >= 0 {
			out[i] = scoring.Merge(out[i], l, c.Bounds)
			merged++
			continue
		}
		out = append(out, l)
	}
	return out, merged
}

// pruneStaleCandidates archives unpromoted candidates past the prune age.
func (c *Curator) pruneStaleCandidates(candidates []types.Lesson, now time.Time) ([]types.Lesson, []types.ArchiveRecord, int) {
	cutoff := now.Add(-c.Engine.PruneAge())

	var kept []types.Lesson
	var archived []types.ArchiveRecord
	for _, cand := range candidates {
		if cand.CreatedAt.Before(cutoff) {
			archived = append(archived, types.ArchiveRecord{
				Lesson:     cand,
				Reason:     types.ReasonPoolStale,
				ArchivedAt: now,
			})
			continue
		}
		kept = append(kept, cand)
	}
	return kept, archived, len(archived)
}

// minEventsForSuccessRule is the evidence floor before the success-rate
// prune rule applies; sparse lessons are judged by age alone.
const minEventsForSuccessRule = 10

// pruneActive removes stale and poor-performing lessons from the active
// set, producing archive records for each removal.
func (c *Curator) pruneActive(active []types.Lesson, now time.Time) ([]types.Lesson, []types.ArchiveRecord) {
	cutoff := now.Add(-c.Engine.PruneAge())

	var kept []types.Lesson
	var archived []types.ArchiveRecord
	for _, l := range active {
		switch {
		case l.CreatedAt.Before(cutoff):
			archived = append(archived, types.ArchiveRecord{
				Lesson:     l,
				Reason:     types.ReasonStaleAge,
				ArchivedAt: now,
			})
		case l.TotalOutcomes() >= minEventsForSuccessRule && l.SuccessRate() < c.Engine.MinSuccessRate:
			archived = append(archived, types.ArchiveRecord{
				Lesson:     l,
				Reason:     types.ReasonLowSuccessRate,
				ArchivedAt: now,
			})
		default:
			kept = append(kept, l)
		}
	}
	return kept, archived
}

// capByConfidence keeps the top max lessons by confidence and archives
// the remainder with the given reason. The sort is stable so equal
// confidence preserves insertion order.
func capByConfidence(lessons []types.Lesson, max int, reason types.ArchiveReason, now time.Time) ([]types.Lesson, []types.ArchiveRecord) {
	if max <= 0 || len(lessons) <= max {
		return lessons, nil
	}

	sorted := append([]types.Lesson(nil), lessons...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	var archived []types.ArchiveRecord
	for _, l := range sorted[max:] {
		archived = append(archived, types.ArchiveRecord{
			Lesson:     l,
			Reason:     reason,
			ArchivedAt: now,
		})
	}
	return sorted[:max], archived
}

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/playbook/internal/config"
	"github.com/boshu2/playbook/internal/events"
	"github.com/boshu2/playbook/internal/extract"
	"github.com/boshu2/playbook/internal/lockfile"
	"github.com/boshu2/playbook/internal/logging"
	"github.com/boshu2/playbook/internal/pool"
	"github.com/boshu2/playbook/internal/synth"
	"github.com/boshu2/playbook/internal/types"
)

var analyzeTrigger string

// analyzeReport summarizes one analysis run.
type analyzeReport struct {
	// Events is how many eligible events were read past the marker.
	Events int `json:"events"`

	// Groups is how many pattern groups survived the minimum-size filter.
	Groups int `json:"groups"`

	// Candidates is how many lessons were synthesized this run.
	Candidates int `json:"candidates"`

	// Merged is how many candidates folded into existing pool entries.
	Merged int `json:"merged"`

	// Added is how many candidates were appended to the pool as new.
	Added int `json:"added"`

	// PoolTotal is the pool size after the write.
	PoolTotal int `json:"pool_total"`

	// Skipped reports a cycle abandoned because the pool was locked.
	Skipped bool `json:"skipped,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract patterns from new events and pool lesson candidates",
	Long: `Reads telemetry events newer than the last-analysis marker, groups
them by skill and error type, synthesizes a lesson candidate per
surviving group, and folds the candidates into the pool.

A run with too few new events is a no-op that still advances the
marker. A held pool lock skips the cycle; the events stay eligible
for the next run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		defer func() {
			_ = logging.Sync(log)
		}()

		report, err := runAnalyze(cfg, log, dryRun)
		if errors.Is(err, lockfile.ErrLockTimeout) {
			log.Warn("candidate pool is locked, skipping this cycle")
			report.Skipped = true
		} else if err != nil {
			return err
		}

		return printReport(cmd.OutOrStdout(), report, cfg.Output)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeTrigger, "trigger", "", "Trigger kind that initiated this run (informational)")
	rootCmd.AddCommand(analyzeCmd)
}

// runAnalyze executes the extraction pipeline: read events past the
// marker, group, synthesize, save to the pool, then advance the marker.
// The marker does not advance on a dry run or a lock timeout, so skipped
// events stay eligible.
func runAnalyze(cfg *config.Config, log *zap.Logger, dry bool) (analyzeReport, error) {
	var report analyzeReport

	layout, err := newLayout(cfg)
	if err != nil {
		return report, err
	}

	marker := events.LoadMarker(layout.MarkerPath())
	evts, err := events.ReadSince(layout.EventsPath(), marker)
	if err != nil {
		return report, fmt.Errorf("read events: %w", err)
	}
	report.Events = len(evts)

	groups := extract.Extract(evts, cfg.Engine.MinEventsForAnalysis, cfg.Engine.MinEventsForPattern)
	report.Groups = len(groups)

	bounds := engineBounds(cfg)
	candidates := synth.New(bounds).Synthesize(groups)
	report.Candidates = len(candidates)

	log.Debug("analysis pipeline",
		zap.String("trigger", analyzeTrigger),
		zap.Time("marker", marker),
		zap.Int("events", report.Events),
		zap.Int("groups", report.Groups),
		zap.Int("candidates", report.Candidates),
	)

	if dry {
		return report, nil
	}

	lock := lockfile.New(layout.CandidatesLockPath(), cfg.Lock.Timeout(), cfg.Lock.RetryDelay())
	store := pool.NewStore(layout, lock, bounds)
	saved, err := store.Save(candidates)
	if err != nil {
		return report, err
	}
	report.Merged = saved.Merged
	report.Added = saved.Added
	report.PoolTotal = saved.Total

	if err := events.AdvanceMarker(layout.MarkerPath(), markerTarget(evts)); err != nil {
		return report, fmt.Errorf("advance marker: %w", err)
	}

	log.Info("analysis complete",
		zap.String("trigger", analyzeTrigger),
		zap.Int("events", report.Events),
		zap.Int("groups", report.Groups),
		zap.Int("candidates", report.Candidates),
		zap.Int("merged", report.Merged),
		zap.Int("added", report.Added),
		zap.Int("pool_total", report.PoolTotal),
	)
	return report, nil
}

// markerTarget picks the next marker value: the newest event timestamp
// seen, or the current time when nothing new was read. Using the event
// timestamp keeps events appended mid-run eligible for the next pass.
func markerTarget(evts []types.Event) time.Time {
	if len(evts) == 0 {
		return time.Now()
	}
	newest := evts[0].Timestamp
	for _, ev := range evts[1:] {
		if ev.Timestamp.After(newest) {
			newest = ev.Timestamp
		}
	}
	return newest
}

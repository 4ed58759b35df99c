package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/playbook/internal/curator"
	"github.com/boshu2/playbook/internal/lockfile"
	"github.com/boshu2/playbook/internal/logging"
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Promote candidates and prune the playbook",
	Long: `Runs one curation pass: candidates above the confidence threshold
are promoted into the playbook (merging with near-duplicate lessons),
stale and underperforming lessons are archived, and both the playbook
and the candidate pool are capped.

Held locks skip the pass; nothing is lost, the next trigger retries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		defer func() {
			_ = logging.Sync(log)
		}()

		layout, err := newLayout(cfg)
		if err != nil {
			return err
		}

		c := curator.New(layout, cfg)
		c.DryRun = dryRun

		report, err := c.Curate()
		if errors.Is(err, lockfile.ErrLockTimeout) {
			log.Warn("playbook files are locked, skipping this pass")
			_, perr := fmt.Fprintln(cmd.OutOrStdout(), "Curation skipped: files are locked.")
			return perr
		}
		if err != nil {
			return err
		}

		logCurateSummary(log, report)
		return printReport(cmd.OutOrStdout(), report, cfg.Output)
	},
}

func init() {
	rootCmd.AddCommand(curateCmd)
}

// logCurateSummary emits the per-invocation curation summary line.
func logCurateSummary(log *zap.Logger, report curator.Report) {
	log.Info("curation complete",
		zap.Int("promoted", report.Promoted),
		zap.Int("merged", report.MergedActive),
		zap.Int("pruned", report.PrunedStale+report.PrunedLowSuccess),
		zap.Int("overflow", report.Overflow),
		zap.Int("active_total", report.ActiveTotal),
		zap.Int("pool_total", report.PoolTotal),
	)
}

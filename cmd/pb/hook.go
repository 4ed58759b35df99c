package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/playbook/internal/config"
	"github.com/boshu2/playbook/internal/curator"
	"github.com/boshu2/playbook/internal/lockfile"
	"github.com/boshu2/playbook/internal/logging"
	"github.com/boshu2/playbook/internal/types"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Host-facing entry point, reads a trigger record from stdin",
	Long: `Reads one JSON trigger record from stdin and dispatches it:

  session-end, pre-compact   analysis run (extract + synthesize + pool)
  session-start              curation run (promote + prune + cap)
  anything else              no-op

The hook always exits 0. The host session must never fail because
memory maintenance did; failures are logged to stderr and swallowed.`,
	Run: func(cmd *cobra.Command, args []string) {
		runHook(cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

// runHook dispatches one trigger. Every exit path, including panics in
// the pipeline, is absorbed here.
func runHook(stdin io.Reader) {
	cfg, err := loadConfig()
	if err != nil {
		return
	}
	log := newLogger(cfg)
	defer func() {
		_ = logging.Sync(log)
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Error("hook panicked", zap.Any("panic", r))
		}
	}()

	dispatchTrigger(cfg, log, readTrigger(stdin))
}

// dispatchTrigger routes one trigger to its pipeline. Each handled kind
// ends with a summary line: runAnalyze logs its own, the curation branch
// logs the report here.
func dispatchTrigger(cfg *config.Config, log *zap.Logger, trigger types.Trigger) {
	kind := types.ParseTriggerKind(string(trigger.Kind))

	switch kind {
	case types.TriggerSessionEnd, types.TriggerPreCompact:
		analyzeTrigger = string(kind)
		if _, err := runAnalyze(cfg, log, false); err != nil {
			logHookError(log, "analysis", err)
		}
	case types.TriggerSessionStart:
		layout, err := newLayout(cfg)
		if err != nil {
			logHookError(log, "curation", err)
			return
		}
		c := curator.New(layout, cfg)
		report, err := c.Curate()
		if err != nil {
			logHookError(log, "curation", err)
			return
		}
		logCurateSummary(log, report)
	default:
		log.Debug("unrecognized trigger, nothing to do", zap.String("kind", string(trigger.Kind)))
	}
}

// readTrigger decodes the host's trigger record. Malformed or empty
// input yields a zero trigger, which dispatches as a no-op.
func readTrigger(r io.Reader) types.Trigger {
	var trigger types.Trigger
	dec := json.NewDecoder(r)
	if err := dec.Decode(&trigger); err != nil {
		return types.Trigger{}
	}
	return trigger
}

// logHookError keeps lock contention at warn; anything else is an error.
// Either way the hook still exits 0.
func logHookError(log *zap.Logger, stage string, err error) {
	if errors.Is(err, lockfile.ErrLockTimeout) {
		log.Warn("files are locked, skipping this cycle", zap.String("stage", stage))
		return
	}
	log.Error("memory maintenance failed", zap.String("stage", stage), zap.Error(err))
}

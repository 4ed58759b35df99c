package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/playbook/internal/config"
	"github.com/boshu2/playbook/internal/logging"
	"github.com/boshu2/playbook/internal/scoring"
	"github.com/boshu2/playbook/internal/storage"
)

var (
	// Global flags
	dryRun    bool
	verbose   bool
	output    string
	cfgFile   string
	memoryDir string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pb",
	Short: "Lesson lifecycle engine for coding-assistant telemetry",
	Long: `pb turns a stream of telemetry events into a curated playbook of
confidence-scored lessons.

Core Commands:
  hook        Host-facing entry point (reads a trigger from stdin)
  analyze     Extract patterns and synthesize lesson candidates
  curate      Promote, dedupe, prune, and cap the playbook
  playbook    List active lessons
  candidates  List the candidate pool
  status      Show current state
  version     Show version information

Lessons are promoted from the candidate pool once their confidence
clears the threshold, merged with near-duplicates, and pruned when
stale or underperforming. All state lives under the memory root.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without writing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .playbook/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&memoryDir, "memory-dir", "", "Memory root directory (default: .playbook)")
}

func syncConfigFlagToEnv() {
	if cfgFile != "" {
		_ = os.Setenv("PLAYBOOK_CONFIG", cfgFile)
	}
}

// loadConfig resolves configuration with flag values layered on top.
func loadConfig() (*config.Config, error) {
	overrides := &config.Config{
		Output:    output,
		MemoryDir: memoryDir,
		Verbose:   verbose,
	}
	return config.Load(overrides)
}

// newLogger builds the per-invocation stderr logger.
func newLogger(cfg *config.Config) *zap.Logger {
	return logging.ForCLI(cfg.Verbose || verbose)
}

// newLayout resolves the memory root and ensures it exists.
func newLayout(cfg *config.Config) (storage.Layout, error) {
	layout := storage.NewLayout(cfg.MemoryDir)
	if err := layout.Init(); err != nil {
		return storage.Layout{}, err
	}
	return layout, nil
}

// engineBounds maps the configured limits onto scoring bounds.
func engineBounds(cfg *config.Config) scoring.Bounds {
	return scoring.Bounds{
		MaxCount:        cfg.Engine.MaxCount,
		MaxSourceEvents: cfg.Engine.MaxSourceEvents,
		HumanWeight:     cfg.Engine.HumanWeight,
	}
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/boshu2/playbook/internal/events"
	"github.com/boshu2/playbook/internal/formatter"
	"github.com/boshu2/playbook/internal/storage"
	"github.com/boshu2/playbook/internal/types"
)

// statusInfo is the state snapshot shown by the status command.
type statusInfo struct {
	MemoryDir    string    `json:"memory_dir"`
	LastAnalysis time.Time `json:"last_analysis"`
	PendingCount int       `json:"pending_events"`
	PoolSize     int       `json:"pool_size"`
	ActiveSize   int       `json:"active_size"`
	ArchiveSize  int       `json:"archive_size"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current engine state",
	Long:  `Shows the marker, pending event count, and the size of each lesson file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		layout := storage.NewLayout(cfg.MemoryDir)

		info := statusInfo{
			MemoryDir:    layout.Root,
			LastAnalysis: events.LoadMarker(layout.MarkerPath()),
		}

		pending, err := events.ReadSince(layout.EventsPath(), info.LastAnalysis)
		if err != nil {
			return fmt.Errorf("read events: %w", err)
		}
		info.PendingCount = len(pending)

		var lessons []types.Lesson
		if storage.ReadJSON(layout.CandidatesPath(), &lessons) {
			info.PoolSize = len(lessons)
		}
		lessons = nil
		if storage.ReadJSON(layout.PlaybookPath(), &lessons) {
			info.ActiveSize = len(lessons)
		}

		archived, err := storage.CountJSONLines(layout.ArchivePath())
		if err != nil {
			return fmt.Errorf("count archive: %w", err)
		}
		info.ArchiveSize = archived

		if cfg.Output == formatter.FormatJSON {
			return formatter.WriteJSON(cmd.OutOrStdout(), info)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Memory root:     %s\n", info.MemoryDir)
		if info.LastAnalysis.IsZero() || info.LastAnalysis.Unix() <= 0 {
			fmt.Fprintf(w, "Last analysis:   never\n")
		} else {
			fmt.Fprintf(w, "Last analysis:   %s\n", info.LastAnalysis.Format(time.RFC3339))
		}
		fmt.Fprintf(w, "Pending events:  %d\n", info.PendingCount)
		fmt.Fprintf(w, "Candidate pool:  %d\n", info.PoolSize)
		fmt.Fprintf(w, "Active lessons:  %d\n", info.ActiveSize)
		fmt.Fprintf(w, "Archived:        %d\n", info.ArchiveSize)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/boshu2/playbook/internal/formatter"
	"github.com/boshu2/playbook/internal/storage"
	"github.com/boshu2/playbook/internal/types"
)

var playbookCmd = &cobra.Command{
	Use:   "playbook",
	Short: "List active lessons",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		layout := storage.NewLayout(cfg.MemoryDir)

		var lessons []types.Lesson
		storage.ReadJSON(layout.PlaybookPath(), &lessons)
		return formatter.RenderLessons(cmd.OutOrStdout(), lessons, cfg.Output)
	},
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List the candidate pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		layout := storage.NewLayout(cfg.MemoryDir)

		var lessons []types.Lesson
		storage.ReadJSON(layout.CandidatesPath(), &lessons)
		return formatter.RenderLessons(cmd.OutOrStdout(), lessons, cfg.Output)
	},
}

func init() {
	rootCmd.AddCommand(playbookCmd)
	rootCmd.AddCommand(candidatesCmd)
}

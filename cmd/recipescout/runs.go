package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/recipescout/internal/database"
)

// NewShowRunCmd creates the show-run command.
func NewShowRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-run [run-id]",
		Short: "Show the statistics of a build-library run",
		Long: `Show-run prints the statistics stored for a build-library run.
Without a run id, the latest run is shown.

Examples:
  recipescout show-run
  recipescout show-run --markdown 3f1c2a9e-6c1d-4a55-9d7e-1c0b7d2b4f10`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShowRunCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON statistics (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown statistics (mutually exclusive with --json)")

	return cmd
}

// runShowRunCmd executes the show-run command.
func runShowRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	setupLogger(cmd, cfg)

	db, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	var runID string
	if len(args) > 0 {
		runID = args[0]
	}
	stats, err := db.GetRun(cmd.Context(), runID)
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) && runID == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No build-library runs recorded yet.")
			return nil
		}
		return err
	}
	return outputReport(cmd.OutOrStdout(), cfg, stats)
}

// Package main provides the entry point for the recipescout CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for recipescout.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipescout",
		Short: "Recipe discovery crawler and recipe library builder",
		Long: `recipescout finds recipe pages on cooking websites and builds a local recipe library.

It classifies URLs and page content to tell recipes from listings, crawls
each site with a chain of strategies (headless browser, lightweight HTTP
crawl, category probing and a table of known recipe URLs) and stores the
extracted recipes in a SQLite database.

Per-site failures never stop a run; they are reported in the run statistics.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .recipescout.yaml in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory holding the recipe database (default: XDG data directory)")

	cmd.AddCommand(NewFindRecipesCmd())
	cmd.AddCommand(NewBuildLibraryCmd())
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewListSitesCmd())
	cmd.AddCommand(NewListRecipesCmd())
	cmd.AddCommand(NewViewRecipeCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewShowRunCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

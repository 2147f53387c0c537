package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/crawler"
	"github.com/nao1215/recipescout/internal/model"
	"github.com/nao1215/recipescout/internal/pipeline"
	"github.com/nao1215/recipescout/internal/recipe"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <url> [url...]",
		Short: "Extract recipes from recipe page URLs and store them",
		Long: `Scrape fetches recipe pages, extracts the recipe from their structured data
and stores it in the recipe database. A recipe that is already stored under
the same URL is replaced.

Pages that refuse plain HTTP are rendered with the headless browser.

Examples:
  # Store one recipe
  recipescout scrape https://smittenkitchen.com/2023/05/rhubarb-cake/

  # Print the extracted recipe as JSON without storing it
  recipescout scrape --dry-run https://smittenkitchen.com/2023/05/rhubarb-cake/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScrapeCmd,
	}

	cmd.Flags().Bool("dry-run", false,
		"Print the extracted recipes as JSON instead of storing them")
	cmd.Flags().Bool("no-browser-crawler", false,
		"Never use the headless browser")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().String("proxy", "",
		"Proxy URL for HTTP requests (http, https, socks5 or socks5h)")

	return cmd
}

// runScrapeCmd executes the scrape command.
// A page that fails is reported and the remaining URLs are still processed.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyURL, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if noBrowser, _ := flags.GetBool("no-browser-crawler"); noBrowser { //nolint:errcheck // flag is defined above
		cfg.UseBrowser = false
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	fetcher, err := newFetcher(cfg, cfg.SiteConfigs.Defaults, logger)
	if err != nil {
		return err
	}
	renderer := newRenderer(cfg, 1, logger)
	extractor := recipe.NewExtractor(recipe.WithLogger(logger))

	var store pipeline.RecipeStore
	if !dryRun {
		db, err := openDB(cfg, true)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	out := cmd.OutOrStdout()
	var extracted []*model.Recipe
	for _, rawURL := range args {
		if ctx.Err() != nil {
			break
		}

		page, err := fetcher.Fetch(ctx, rawURL)
		if err != nil && crawler.IsBlocked(err) && renderer != nil {
			logger.Info("page blocked, rendering with the browser", "url", rawURL)
			page, err = renderer.Render(ctx, rawURL)
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to fetch %s: %v\n", rawURL, err)
			continue
		}

		r, err := extractor.ExtractPage(page)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to extract %s: %v\n", rawURL, err)
			continue
		}
		r.Notes["strategy"] = "scrape"

		if dryRun {
			extracted = append(extracted, r)
			continue
		}
		id, err := store.Add(ctx, r)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to store %s: %v\n", rawURL, err)
			continue
		}
		fmt.Fprintf(out, "Stored recipe #%d: %s (%d ingredients)\n", id, r.Title, len(r.Ingredients))
	}

	if dryRun {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if extracted == nil {
			extracted = []*model.Recipe{}
		}
		return encoder.Encode(extracted)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/crawler"
	"github.com/nao1215/recipescout/internal/database"
	"github.com/nao1215/recipescout/internal/model"
	"github.com/nao1215/recipescout/internal/pipeline"
	"github.com/nao1215/recipescout/internal/recipe"
	"github.com/nao1215/recipescout/internal/report"
)

// NewBuildLibraryCmd creates the build-library command.
func NewBuildLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-library",
		Short: "Crawl a list of sites and store their recipes",
		Long: `Build-library crawls every site of a site list, extracts recipes from the
discovered pages and stores them in the recipe database.

Sites are processed in sequential batches; within a batch, sites run in
parallel on a bounded number of workers. Each site has a wall-clock budget.
A site whose plain HTTP crawl fails is retried once with the headless browser.

The command exits 0 even when sites fail. Failures are listed in the run
statistics, which are printed, stored in the database and saved as JSON.

Site list formats:
  # plain text, one "domain" or "name,domain" per line
  Smitten Kitchen,smittenkitchen.com
  budgetbytes.com

  # YAML
  - name: Smitten Kitchen
    domain: smittenkitchen.com

Examples:
  # Crawl the site_list of the configuration file
  recipescout build-library

  # Crawl a site list with 8 workers, 3 recipes per site
  recipescout build-library --sites sites.txt --workers 8 --recipes-per-site 3

  # HTTP only, Markdown statistics written to a file
  recipescout build-library --sites sites.txt --no-browser-crawler --markdown -o report.md`,
		Args: cobra.NoArgs,
		RunE: runBuildLibraryCmd,
	}

	// Concurrency flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of sites crawled concurrently within a batch")
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize,
		"Number of sites per sequential batch")
	cmd.Flags().Duration("site-timeout", config.DefaultSiteTimeout,
		"Wall-clock limit for one site")

	// Crawl flags
	cmd.Flags().IntP("recipes-per-site", "r", config.DefaultRecipesPerSite,
		"Number of recipes to collect per site")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum link depth followed from the seed pages")
	cmd.Flags().Bool("no-browser-crawler", false,
		"Never use the headless browser")
	cmd.Flags().Bool("verify", false,
		"Fetch each discovered URL and keep only pages classified as recipes")
	cmd.Flags().Bool("ignore-robots", false,
		"Do not consult robots.txt")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Duration("delay-min", config.DefaultDelayMin,
		"Minimum delay before each recipe fetch")
	cmd.Flags().Duration("delay-max", config.DefaultDelayMax,
		"Maximum delay before each recipe fetch")
	cmd.Flags().String("proxy", "",
		"Proxy URL for HTTP requests (http, https, socks5 or socks5h)")

	// Site list flags
	cmd.Flags().StringP("sites", "s", "",
		"Site list file (default: site_list of the configuration file)")
	cmd.Flags().Int("limit", 0,
		"Process only the first N sites (0 means all)")
	cmd.Flags().Bool("all-languages", false,
		"Keep sites that look non-English")

	// Report flags
	cmd.Flags().String("stats-dir", "",
		"Directory for run statistics JSON files (default: stats under the data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON statistics (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown statistics (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the statistics report to the specified file path (creates directories if needed)")

	return cmd
}

// runBuildLibraryCmd executes the build-library command.
func runBuildLibraryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyBuildFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	sites, err := loadSites(cfg)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	if cfg.EnglishOnly {
		kept := config.FilterEnglishSites(sites)
		if dropped := len(sites) - len(kept); dropped > 0 {
			logger.Info("skipping non-English sites", "count", dropped)
		}
		sites = kept
	}
	if cfg.SiteLimit > 0 && len(sites) > cfg.SiteLimit {
		sites = sites[:cfg.SiteLimit]
	}

	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	runner, err := newRunner(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Building recipe library from %d sites (workers: %d, batch size: %d)...\n",
		len(sites), cfg.Workers, cfg.BatchSize)

	stats := runner.Run(ctx, sites)

	// Statistics are kept even when the run was interrupted.
	saveCtx := context.WithoutCancel(ctx)
	if err := db.SaveRun(saveCtx, stats); err != nil {
		logger.Error("failed to save run statistics", "run_id", stats.RunID, "error", err)
	}
	if path, err := report.SaveStatsFile(cfg.StatsDirOrDefault(), stats); err != nil {
		logger.Error("failed to write statistics file", "run_id", stats.RunID, "error", err)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "Statistics saved to %s\n", path)
	}

	return outputReport(cmd.OutOrStdout(), cfg, stats)
}

// applyBuildFlags overrides file settings with flags given on the command line.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	flags := cmd.Flags()

	ints := []struct {
		name string
		dst  *int
	}{
		{"workers", &cfg.Workers},
		{"batch-size", &cfg.BatchSize},
		{"recipes-per-site", &cfg.RecipesPerSite},
		{"max-depth", &cfg.MaxDepth},
		{"limit", &cfg.SiteLimit},
	}
	for _, f := range ints {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetInt(f.name); err != nil {
			return err
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"site-timeout", &cfg.SiteTimeout},
		{"timeout", &cfg.Timeout},
		{"delay-min", &cfg.DelayMin},
		{"delay-max", &cfg.DelayMax},
	}
	for _, f := range durations {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetDuration(f.name); err != nil {
			return err
		}
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"proxy", &cfg.ProxyURL},
		{"sites", &cfg.SiteListPath},
		{"stats-dir", &cfg.StatsDir},
		{"output", &cfg.ReportFile},
	}
	for _, f := range strs {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return err
		}
	}

	if noBrowser, _ := flags.GetBool("no-browser-crawler"); noBrowser { //nolint:errcheck // flag is defined above
		cfg.UseBrowser = false
	}
	if ignore, _ := flags.GetBool("ignore-robots"); ignore { //nolint:errcheck // flag is defined above
		cfg.RespectRobots = false
	}
	if all, _ := flags.GetBool("all-languages"); all { //nolint:errcheck // flag is defined above
		cfg.EnglishOnly = false
	}
	if cfg.Verify, err = flags.GetBool("verify"); err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	return nil
}

// loadSites returns the site list from --sites or the configuration file.
func loadSites(cfg *config.Config) ([]model.Site, error) {
	if cfg.SiteListPath != "" {
		return config.LoadSiteList(cfg.SiteListPath)
	}
	if len(cfg.SiteConfigs.SiteList) == 0 {
		return nil, config.ErrNoSites
	}
	return append([]model.Site(nil), cfg.SiteConfigs.SiteList...), nil
}

// newRunner wires the parallel site runner for build-library.
func newRunner(cfg *config.Config, logger *slog.Logger) (*pipeline.Runner, error) {
	fetcher, err := newFetcher(cfg, cfg.SiteConfigs.Defaults, logger)
	if err != nil {
		return nil, err
	}
	renderer := newRenderer(cfg, cfg.Workers, logger)
	factory := newChainFactory(cfg, fetcher, renderer, logger)
	extractor := recipe.NewExtractor(recipe.WithLogger(logger))

	dbDir := cfg.DBDirOrDefault()
	openStore := func(context.Context) (pipeline.RecipeStore, error) {
		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	opts := []pipeline.RunnerOption{
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithBatchSize(cfg.BatchSize),
		pipeline.WithRecipesPerSite(cfg.RecipesPerSite),
		pipeline.WithMaxDepth(cfg.MaxDepth),
		pipeline.WithSiteTimeout(cfg.SiteTimeout),
		pipeline.WithBrowser(factory.UseBrowser),
		pipeline.WithAntiScrapingDomains(cfg.SiteConfigs.AntiScrapingList()),
		pipeline.WithSSLProblemDomains(cfg.SiteConfigs.SSLProblemList()),
		pipeline.WithRunnerLimiter(crawler.NewLimiter(cfg.DelayMin, cfg.DelayMax)),
		pipeline.WithSiteConfigs(cfg.SiteConfigs),
		pipeline.WithRunnerLogger(logger),
	}
	if renderer != nil {
		opts = append(opts, pipeline.WithRecipeRenderer(renderer))
	}
	if cfg.Verify {
		opts = append(opts, pipeline.WithVerification(newVerifier(cfg, fetcher, logger)))
	}

	return pipeline.NewRunner(factory.ForSite, fetcher, extractor.ExtractPage, openStore, opts...), nil
}

// outputReport writes the run statistics in the requested format.
func outputReport(stdout io.Writer, cfg *config.Config, stats *model.RunStatistics) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
	_, err := writer.Write(stats)
	return err
}

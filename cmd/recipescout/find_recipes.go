package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/crawler"
	"github.com/nao1215/recipescout/internal/pipeline"
)

// NewFindRecipesCmd creates the find-recipes command.
func NewFindRecipesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find-recipes <domain>",
		Short: "Find recipe URLs on a single site",
		Long: `Find-recipes discovers recipe page URLs on one site without storing anything.

The strategies run in order until enough URLs are found:
- rendered:       headless browser crawl (first only for sites that block plain HTTP)
- lightweight:    HTTP crawl from the home page and category pages
- category_probe: category pages guessed from common paths
- direct:         verified recipe URLs from the known-URL table

A site that blocks plain HTTP is retried with the headless browser.

Examples:
  # Find up to 5 recipe URLs
  recipescout find-recipes smittenkitchen.com

  # Find 20 URLs, following links at most 2 hops deep
  recipescout find-recipes --max-urls 20 --max-depth 2 budgetbytes.com

  # HTTP only, and re-check each URL's page content
  recipescout find-recipes --no-browser-crawler --verify cookieandkate.com`,
		Args: cobra.ExactArgs(1),
		RunE: runFindRecipesCmd,
	}

	cmd.Flags().IntP("max-urls", "n", config.DefaultMaxResults,
		"Number of recipe URLs to find")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum link depth followed from the seed pages")
	cmd.Flags().Bool("no-browser-crawler", false,
		"Never use the headless browser")
	cmd.Flags().Bool("verify", false,
		"Fetch each URL and keep only pages classified as recipes")
	cmd.Flags().Bool("ignore-robots", false,
		"Do not consult robots.txt")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().String("proxy", "",
		"Proxy URL for HTTP requests (http, https, socks5 or socks5h)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the result as JSON")

	return cmd
}

// findResult is the JSON output of find-recipes.
type findResult struct {
	Site         string        `json:"site"`
	Strategy     string        `json:"strategy,omitempty"`
	FallbackUsed bool          `json:"fallback_used"`
	URLs         []string      `json:"urls"`
	Attempts     []findAttempt `json:"attempts"`
}

type findAttempt struct {
	Strategy string `json:"strategy"`
	Outcome  string `json:"outcome"`
	Found    int    `json:"found"`
	Error    string `json:"error,omitempty"`
}

// runFindRecipesCmd executes the find-recipes command.
func runFindRecipesCmd(cmd *cobra.Command, args []string) error {
	target := strings.TrimSpace(args[0])
	domain := config.NormalizeDomain(target)
	if domain == "" {
		return fmt.Errorf("configuration error: %w", config.ErrEmptyDomain)
	}
	startURL, err := crawler.SiteRoot(target)
	if err != nil {
		return fmt.Errorf("configuration error: invalid site %q: %w", target, err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc := cfg.SiteConfigs.GetSiteConfig(domain)
	if sc.UseBrowser != nil {
		cfg.UseBrowser = *sc.UseBrowser
	}
	if err := applyFindFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	fetcher, err := newFetcher(cfg, sc, logger)
	if err != nil {
		return err
	}
	renderer := newRenderer(cfg, 1, logger)
	factory := newChainFactory(cfg, fetcher, renderer, logger)

	req := pipeline.Request{
		StartURL:       startURL + "/",
		MaxResults:     cfg.MaxResults,
		MaxDepth:       cfg.MaxDepth,
		CategoryPaths:  sc.CategoryPaths,
		IgnorePatterns: sc.IgnorePatterns,
	}
	if sc.MaxResults > 0 && !cmd.Flags().Changed("max-urls") {
		req.MaxResults = sc.MaxResults
	}
	if sc.Depth > 0 && !cmd.Flags().Changed("max-depth") {
		req.MaxDepth = sc.Depth
	}

	renderedFirst := cfg.UseBrowser && listedDomain(cfg.SiteConfigs.AntiScrapingList(), domain)
	found := factory.Build(renderedFirst).Find(ctx, req)

	urls := found.URLs
	if cfg.Verify && len(urls) > 0 {
		urls = newVerifier(cfg, fetcher, logger).Verify(ctx, urls)
	}

	res := findResult{
		Site:         domain,
		Strategy:     found.Strategy,
		FallbackUsed: found.FallbackUsed,
		URLs:         urls,
		Attempts:     make([]findAttempt, 0, len(found.Attempts)),
	}
	if res.URLs == nil {
		res.URLs = []string{}
	}
	for _, a := range found.Attempts {
		attempt := findAttempt{Strategy: a.Strategy, Outcome: a.Outcome.String(), Found: len(a.URLs)}
		if a.Err != nil {
			attempt.Error = a.Err.Error()
		}
		res.Attempts = append(res.Attempts, attempt)
	}

	if cfg.JSONReport {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(res)
	}
	printFindResult(cmd.OutOrStdout(), res)
	return nil
}

// applyFindFlags overrides file settings with flags given on the command line.
func applyFindFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	flags := cmd.Flags()

	if flags.Changed("max-urls") {
		if cfg.MaxResults, err = flags.GetInt("max-urls"); err != nil {
			return err
		}
	}
	if flags.Changed("max-depth") {
		if cfg.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return err
		}
	}
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
	if ignore, _ := flags.GetBool("ignore-robots"); ignore { //nolint:errcheck // flag is defined above
		cfg.RespectRobots = false
	}
	if cfg.Verify, err = flags.GetBool("verify"); err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	return nil
}

// printFindResult writes the human-readable find-recipes output.
func printFindResult(w io.Writer, res findResult) {
	if len(res.URLs) == 0 {
		fmt.Fprintf(w, "No recipe URLs found on %s\n", res.Site)
	} else {
		label := res.Strategy
		if res.FallbackUsed {
			label += ", fallback"
		}
		fmt.Fprintf(w, "Found %d recipe URLs on %s (%s):\n\n", len(res.URLs), res.Site, label)
		for i, u := range res.URLs {
			fmt.Fprintf(w, "  %2d. %s\n", i+1, u)
		}
	}

	if len(res.Attempts) == 0 {
		return
	}
	fmt.Fprintln(w, "\nStrategies tried:")
	for _, a := range res.Attempts {
		line := fmt.Sprintf("  %-15s %-12s %d", a.Strategy, a.Outcome, a.Found)
		if a.Error != "" {
			line += "  " + a.Error
		}
		fmt.Fprintln(w, line)
	}
}

// listedDomain reports whether domain or one of its parent domains is in list.
func listedDomain(list []string, domain string) bool {
	for _, d := range list {
		d = config.NormalizeDomain(d)
		if d != "" && (domain == d || strings.HasSuffix(domain, "."+d)) {
			return true
		}
	}
	return false
}

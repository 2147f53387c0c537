package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/recipescout/internal/config"
)

// NewListSitesCmd creates the list-sites command.
func NewListSitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-sites",
		Short: "Show the sites build-library would crawl",
		Long: `List-sites prints the site list with the treatment each site gets in build-library:
- skipped because it looks non-English (unless --all-languages)
- skipped because of known TLS problems
- crawled with the headless browser first because it blocks plain HTTP

Examples:
  # Sites from the configuration file
  recipescout list-sites

  # Sites from a site list file, as JSON
  recipescout list-sites --sites sites.txt --json`,
		Args: cobra.NoArgs,
		RunE: runListSitesCmd,
	}

	cmd.Flags().StringP("sites", "s", "",
		"Site list file (default: site_list of the configuration file)")
	cmd.Flags().Bool("all-languages", false,
		"Keep sites that look non-English")
	cmd.Flags().BoolP("json", "j", false,
		"Output the list as JSON")

	return cmd
}

// siteEntry is one row of list-sites.
type siteEntry struct {
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	English      bool   `json:"english"`
	BrowserFirst bool   `json:"browser_first"`
	Skipped      string `json:"skipped,omitempty"`
}

// runListSitesCmd executes the list-sites command.
func runListSitesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.SiteListPath, err = cmd.Flags().GetString("sites"); err != nil {
		return err
	}
	allLanguages, err := cmd.Flags().GetBool("all-languages")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	sites, err := loadSites(cfg)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	antiScraping := cfg.SiteConfigs.AntiScrapingList()
	sslProblem := cfg.SiteConfigs.SSLProblemList()

	entries := make([]siteEntry, 0, len(sites))
	for _, s := range sites {
		domain := config.NormalizeDomain(s.Domain)
		e := siteEntry{
			Name:         s.Name,
			Domain:       domain,
			English:      config.IsEnglishSite(s.Domain),
			BrowserFirst: listedDomain(antiScraping, domain),
		}
		switch {
		case listedDomain(sslProblem, domain):
			e.Skipped = "tls problems"
		case !e.English && !allLanguages:
			e.Skipped = "non-English"
		}
		entries = append(entries, e)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	crawled := 0
	fmt.Fprintf(out, "  %-30s  %-30s  %s\n", "Name", "Domain", "Notes")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))
	for _, e := range entries {
		var notes []string
		if e.Skipped != "" {
			notes = append(notes, "skipped: "+e.Skipped)
		} else {
			crawled++
			if e.BrowserFirst {
				notes = append(notes, "browser first")
			}
		}
		fmt.Fprintf(out, "  %-30s  %-30s  %s\n", truncate(e.Name, 30), truncate(e.Domain, 30), strings.Join(notes, ", "))
	}
	fmt.Fprintf(out, "\n%d of %d sites will be crawled.\n", crawled, len(entries))
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

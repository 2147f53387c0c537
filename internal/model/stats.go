package model

import (
	"sort"
	"time"
)

// Site is one entry of the site list processed by build-library.
type Site struct {
	Name   string `json:"name" yaml:"name"`
	Domain string `json:"domain" yaml:"domain"`
}

// SiteRunResult is the outcome of processing one site in a run.
// It is produced once per site and never modified afterwards.
type SiteRunResult struct {
	// SiteID is the site's name, or its domain when the list has no name.
	SiteID string `json:"site_id"`

	Domain string `json:"domain"`

	// SuccessfulCount is the number of recipes stored.
	SuccessfulCount int `json:"successful_count"`

	// AttemptCount is the number of recipe URLs that were fetched.
	AttemptCount int `json:"attempt_count"`

	// UsedFallbackStrategy is true when the URLs came from anything
	// other than the first strategy that was tried.
	UsedFallbackStrategy bool `json:"used_fallback_strategy"`

	// UsedBrowser is true when the rendered strategy produced the URLs.
	UsedBrowser bool `json:"used_browser"`

	// Strategy names the strategy that produced the URLs.
	Strategy string `json:"strategy,omitempty"`

	// Skipped is set when the site was filtered out before crawling.
	Skipped string `json:"skipped,omitempty"`

	// Errors lists per-recipe and per-site failures.
	Errors []string `json:"errors,omitempty"`

	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether at least one recipe was stored.
func (r SiteRunResult) Succeeded() bool {
	return r.SuccessfulCount > 0
}

// RunStatistics aggregates a build-library run.
type RunStatistics struct {
	RunID               string          `json:"run_id"`
	StartedAt           time.Time       `json:"started_at"`
	TotalSites          int             `json:"total_sites"`
	SuccessfulSites     int             `json:"successful_sites"`
	FailedSites         int             `json:"failed_sites"`
	BrowserCrawlerSites int             `json:"browser_crawler_sites"`
	TotalRecipes        int             `json:"total_recipes"`
	TotalAttempts       int             `json:"total_attempts"`
	SuccessRate         float64         `json:"success_rate"`
	ElapsedTime         float64         `json:"elapsed_time"`
	RecipesPerMinute    float64         `json:"recipes_per_minute"`
	SiteResults         []SiteRunResult `json:"site_results"`

	SuccessfulDomains     []string `json:"successful_domains,omitempty"`
	FailedDomains         []string `json:"failed_domains,omitempty"`
	BrowserCrawlerDomains []string `json:"browser_crawler_domains,omitempty"`
}

// NewRunStatistics aggregates site results into run statistics.
// Derived rates are zero when nothing was attempted or no time elapsed.
func NewRunStatistics(runID string, startedAt time.Time, totalSites int, results []SiteRunResult, elapsed time.Duration) *RunStatistics {
	stats := &RunStatistics{
		RunID:       runID,
		StartedAt:   startedAt,
		TotalSites:  totalSites,
		ElapsedTime: elapsed.Seconds(),
		SiteResults: append([]SiteRunResult(nil), results...),
	}

	for _, r := range results {
		stats.TotalRecipes += r.SuccessfulCount
		stats.TotalAttempts += r.AttemptCount
		if r.Succeeded() {
			stats.SuccessfulSites++
			stats.SuccessfulDomains = append(stats.SuccessfulDomains, r.Domain)
		} else {
			stats.FailedSites++
			stats.FailedDomains = append(stats.FailedDomains, r.Domain)
		}
		if r.UsedBrowser {
			stats.BrowserCrawlerSites++
			stats.BrowserCrawlerDomains = append(stats.BrowserCrawlerDomains, r.Domain)
		}
	}

	if stats.TotalAttempts > 0 {
		stats.SuccessRate = float64(stats.TotalRecipes) / float64(stats.TotalAttempts) * 100
	}
	if minutes := elapsed.Minutes(); minutes > 0 {
		stats.RecipesPerMinute = float64(stats.TotalRecipes) / minutes
	}

	sort.Strings(stats.SuccessfulDomains)
	sort.Strings(stats.FailedDomains)
	sort.Strings(stats.BrowserCrawlerDomains)
	return stats
}

package model

import (
	"testing"
	"time"
)

// TestNewRunStatistics tests aggregation of site results.
func TestNewRunStatistics(t *testing.T) {
	t.Parallel()

	t.Run("aggregates counts and derived rates", func(t *testing.T) {
		t.Parallel()

		results := []SiteRunResult{
			{SiteID: "A", Domain: "a.com", SuccessfulCount: 2, AttemptCount: 2},
			{SiteID: "B", Domain: "b.com", SuccessfulCount: 1, AttemptCount: 2, UsedBrowser: true},
			{SiteID: "C", Domain: "c.com"},
		}
		stats := NewRunStatistics("run-1", time.Now(), 3, results, 2*time.Minute)

		if stats.TotalSites != 3 {
			t.Errorf("expected 3 sites, got %d", stats.TotalSites)
		}
		if stats.SuccessfulSites != 2 || stats.FailedSites != 1 {
			t.Errorf("expected 2 successful and 1 failed, got %d/%d", stats.SuccessfulSites, stats.FailedSites)
		}
		if stats.TotalRecipes != 3 || stats.TotalAttempts != 4 {
			t.Errorf("expected 3 recipes of 4 attempts, got %d/%d", stats.TotalRecipes, stats.TotalAttempts)
		}
		if stats.SuccessRate != 75 {
			t.Errorf("expected success rate 75, got %v", stats.SuccessRate)
		}
		if stats.RecipesPerMinute != 1.5 {
			t.Errorf("expected 1.5 recipes per minute, got %v", stats.RecipesPerMinute)
		}
		if stats.BrowserCrawlerSites != 1 || stats.BrowserCrawlerDomains[0] != "b.com" {
			t.Errorf("unexpected browser sites: %v", stats.BrowserCrawlerDomains)
		}
		if len(stats.FailedDomains) != 1 || stats.FailedDomains[0] != "c.com" {
			t.Errorf("unexpected failed domains: %v", stats.FailedDomains)
		}
	})

	t.Run("all failures produce zero rates instead of errors", func(t *testing.T) {
		t.Parallel()

		results := []SiteRunResult{{Domain: "a.com"}, {Domain: "b.com"}}
		stats := NewRunStatistics("run-2", time.Now(), 2, results, 0)

		if stats.SuccessRate != 0 || stats.RecipesPerMinute != 0 {
			t.Errorf("expected zero rates, got %v and %v", stats.SuccessRate, stats.RecipesPerMinute)
		}
		if stats.FailedSites != 2 {
			t.Errorf("expected 2 failed sites, got %d", stats.FailedSites)
		}
	})
}

// TestHostFromURL tests hostname extraction.
func TestHostFromURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{"https://www.AllRecipes.com/recipe/1/cake/", "allrecipes.com"},
		{"http://example.com:8080/x", "example.com"},
		{"://bad", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			if got := HostFromURL(tc.input); got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/recipescout/internal/config"
)

const testSiteList = `# name,domain
Smitten Kitchen,smittenkitchen.com
Loopy Whisk,https://www.theloopywhisk.com/
afghankitchenrecipes.com
Chefkoch,chefkoch.de
`

// TestRunListSitesCmd tests the site list overview.
func TestRunListSitesCmd(t *testing.T) {
	t.Parallel()

	configPath := writeFile(t, config.DefaultConfigFile, testConfig)
	sitesPath := writeFile(t, "sites.txt", testSiteList)

	t.Run("marks skipped and browser-first sites", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "--config", configPath, "list-sites", "--sites", sitesPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"skipped: tls problems",
			"skipped: non-English",
			"browser first",
			"2 of 4 sites will be crawled.",
		} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in output:\n%s", want, stdout)
			}
		}
	})

	t.Run("keeps every language when asked", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "--config", configPath, "list-sites", "--sites", sitesPath, "--all-languages")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "3 of 4 sites will be crawled.") {
			t.Errorf("expected the non-English site to be kept, got:\n%s", stdout)
		}
	})

	t.Run("writes json", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, "--config", configPath, "list-sites", "--sites", sitesPath, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var entries []siteEntry
		if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, stdout)
		}
		if len(entries) != 4 {
			t.Fatalf("expected 4 entries, got %d", len(entries))
		}
		want := []siteEntry{
			{Name: "Smitten Kitchen", Domain: "smittenkitchen.com", English: true},
			{Name: "Loopy Whisk", Domain: "theloopywhisk.com", English: true, BrowserFirst: true},
			{Name: "afghankitchenrecipes.com", Domain: "afghankitchenrecipes.com", English: true, Skipped: "tls problems"},
			{Name: "Chefkoch", Domain: "chefkoch.de", Skipped: "non-English"},
		}
		for i, w := range want {
			if entries[i] != w {
				t.Errorf("entry %d: expected %+v, got %+v", i, w, entries[i])
			}
		}
	})

	t.Run("falls back to the configured site list", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, config.DefaultConfigFile, "site_list:\n  - name: Budget Bytes\n    domain: budgetbytes.com\n")
		stdout, _, err := execute(t, "--config", path, "list-sites")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "budgetbytes.com") || !strings.Contains(stdout, "1 of 1 sites") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})

	t.Run("fails without any site list", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "--config", configPath, "list-sites")
		if !errors.Is(err, config.ErrNoSites) {
			t.Errorf("expected ErrNoSites, got %v", err)
		}
	})
}

// TestTruncate tests the table cell truncation.
func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{name: "short strings are kept", s: "pie", n: 10, want: "pie"},
		{name: "long strings are cut with dots", s: "chocolate chip cookies", n: 10, want: "chocola..."},
		{name: "runes are counted, not bytes", s: "crème brûlée tart", n: 8, want: "crème..."},
		{name: "tiny widths have no dots", s: "cookies", n: 3, want: "coo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := truncate(tt.s, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
		})
	}
}

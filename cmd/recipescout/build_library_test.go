package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/database"
	"github.com/nao1215/recipescout/internal/report"
)

// TestNewBuildLibraryCmd tests the build-library command creation.
func TestNewBuildLibraryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewBuildLibraryCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "workers", shorthand: "w", defValue: "4"},
		{name: "batch-size", shorthand: "b", defValue: "20"},
		{name: "recipes-per-site", shorthand: "r", defValue: "2"},
		{name: "site-timeout", defValue: "5m0s"},
		{name: "sites", shorthand: "s", defValue: ""},
		{name: "output", shorthand: "o", defValue: ""},
	}

	for _, tt := range tests {
		t.Run("has "+tt.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestRunBuildLibraryCmd tests a full library build against local sites.
func TestRunBuildLibraryCmd(t *testing.T) {
	t.Parallel()

	configPath := writeFile(t, config.DefaultConfigFile, testConfig)
	crawlArgs := []string{"--no-browser-crawler", "--ignore-robots", "--delay-min", "0s", "--delay-max", "0s", "--timeout", "2s"}

	build := func(t *testing.T, dbDir, statsDir, sites string, extra ...string) (string, string, error) {
		t.Helper()
		args := []string{"--config", configPath, "--db-dir", dbDir, "build-library",
			"--sites", writeFile(t, "sites.txt", sites), "--stats-dir", statsDir}
		args = append(args, crawlArgs...)
		return execute(t, append(args, extra...)...)
	}

	t.Run("stores recipes and saves statistics", func(t *testing.T) {
		t.Parallel()

		server := newRecipeSite(t)
		dbDir, statsDir := t.TempDir(), t.TempDir()

		stdout, stderr, err := build(t, dbDir, statsDir, "Test Kitchen,"+server.URL+"\n")
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr:\n%s", err, stderr)
		}
		if !strings.Contains(stderr, "Building recipe library from 1 sites") {
			t.Errorf("expected the progress message on stderr, got:\n%s", stderr)
		}
		if !strings.Contains(stdout, "Recipes:        2 of 2 attempts") {
			t.Errorf("expected two stored recipes in the report, got:\n%s", stdout)
		}

		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		n, err := db.Count(context.Background())
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 recipes, got %d", n)
		}

		r, err := db.GetByURL(context.Background(), server.URL+"/2023/05/15/custard-pie/")
		if err != nil {
			t.Fatalf("expected the custard pie to be stored: %v", err)
		}
		if r.Title != "Custard Pie" || r.Notes["site"] != "Test Kitchen" || r.Notes["strategy"] != "lightweight" {
			t.Errorf("unexpected stored recipe %+v", r)
		}

		run, err := db.GetRun(context.Background(), "")
		if err != nil {
			t.Fatalf("expected the run to be stored: %v", err)
		}
		if run.TotalRecipes != 2 || run.SuccessfulSites != 1 {
			t.Errorf("unexpected stored run %+v", run)
		}

		files, err := filepath.Glob(filepath.Join(statsDir, "build_library_stats_*.json"))
		if err != nil || len(files) != 1 {
			t.Fatalf("expected one statistics file, got %v (%v)", files, err)
		}
		if !strings.Contains(stderr, "Statistics saved to "+files[0]) {
			t.Errorf("expected the statistics path on stderr, got:\n%s", stderr)
		}
	})

	t.Run("failing sites do not fail the run", func(t *testing.T) {
		t.Parallel()

		server := newRecipeSite(t)
		sites := "Test Kitchen," + server.URL + "\nGone," + closedServerURL(t) + "\n"

		stdout, stderr, err := build(t, t.TempDir(), t.TempDir(), sites, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v\nstderr:\n%s", err, stderr)
		}

		var rep report.JSONReport
		if err := json.Unmarshal([]byte(stdout), &rep); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, stdout)
		}
		stats := rep.Statistics
		if stats == nil {
			t.Fatal("expected statistics in the report")
		}
		if stats.TotalSites != 2 || stats.SuccessfulSites != 1 || stats.FailedSites != 1 {
			t.Errorf("unexpected site counts %d/%d/%d", stats.TotalSites, stats.SuccessfulSites, stats.FailedSites)
		}
		if len(stats.SiteResults) != 2 || stats.SiteResults[1].SiteID != "Gone" || len(stats.SiteResults[1].Errors) == 0 {
			t.Errorf("expected the unreachable site to report errors, got %+v", stats.SiteResults)
		}
	})

	t.Run("writes markdown to the output file", func(t *testing.T) {
		t.Parallel()

		server := newRecipeSite(t)
		output := filepath.Join(t.TempDir(), "reports", "run.md")

		stdout, _, err := build(t, t.TempDir(), t.TempDir(), server.URL+"\n", "--markdown", "-o", output)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout, got:\n%s", stdout)
		}

		content, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "#") {
			t.Errorf("expected a Markdown report, got:\n%s", content)
		}
	})

	t.Run("missing site list is a configuration error", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "--config", configPath, "--db-dir", t.TempDir(), "build-library")
		if !errors.Is(err, config.ErrNoSites) {
			t.Errorf("expected ErrNoSites, got %v", err)
		}
	})

	t.Run("unreadable site list is a configuration error", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "--config", configPath, "--db-dir", t.TempDir(),
			"build-library", "--sites", filepath.Join(t.TempDir(), "missing.txt"))
		if err == nil || !strings.HasPrefix(err.Error(), "configuration error") {
			t.Errorf("expected a configuration error, got %v", err)
		}
	})

	t.Run("conflicting report formats are rejected", func(t *testing.T) {
		t.Parallel()

		_, _, err := build(t, t.TempDir(), t.TempDir(), "example.com\n", "--json", "--markdown")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("inverted delay range is rejected", func(t *testing.T) {
		t.Parallel()

		_, _, err := build(t, t.TempDir(), t.TempDir(), "example.com\n", "--delay-min", "5s", "--delay-max", "1s")
		if !errors.Is(err, config.ErrInvalidDelayRange) {
			t.Errorf("expected ErrInvalidDelayRange, got %v", err)
		}
	})
}

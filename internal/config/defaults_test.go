package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultKnownURLs tests the embedded known-URL table.
func TestDefaultKnownURLs(t *testing.T) {
	t.Parallel()

	t.Run("table contains the ten built-in domains", func(t *testing.T) {
		t.Parallel()

		urls := DefaultKnownURLs()
		if len(urls) != 10 {
			t.Errorf("expected 10 domains, got %d", len(urls))
		}
		if len(urls["allrecipes.com"]) != 4 {
			t.Errorf("expected 4 allrecipes urls, got %d", len(urls["allrecipes.com"]))
		}
	})

	t.Run("returned map is a copy", func(t *testing.T) {
		t.Parallel()

		urls := DefaultKnownURLs()
		urls["allrecipes.com"][0] = "mutated"
		if DefaultKnownURLs()["allrecipes.com"][0] == "mutated" {
			t.Error("built-in table was mutated")
		}
	})
}

// TestKnownURLTableLookup tests domain matching against the table.
func TestKnownURLTableLookup(t *testing.T) {
	t.Parallel()

	table := NewKnownURLTable(map[string][]string{
		"example.com":     {"https://example.com/a", "https://example.com/b", "https://example.com/c"},
		"seriouseats.com": {"https://www.seriouseats.com/a"},
	})

	testCases := []struct {
		name     string
		domain   string
		limit    int
		expected int
	}{
		{"exact domain", "example.com", 0, 3},
		{"scheme and www are stripped", "https://www.example.com/", 0, 3},
		{"subdomain finds its parent key", "cooking.example.com", 0, 3},
		{"port is ignored", "cooking.example.com:8443", 0, 3},
		{"shared suffix without a dot is no match", "eats.com", 0, 0},
		{"key inside a longer domain is no match", "notexample.com", 0, 0},
		{"subdomain of another key", "cooking.seriouseats.com", 0, 1},
		{"limit caps the result", "example.com", 2, 2},
		{"unknown domain", "other.org", 0, 0},
		{"empty domain", "", 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := table.Lookup(tc.domain, tc.limit); len(got) != tc.expected {
				t.Errorf("expected %d urls, got %v", tc.expected, got)
			}
		})
	}

	t.Run("results do not alias the table", func(t *testing.T) {
		t.Parallel()

		got := table.Lookup("example.com", 0)
		got[0] = "mutated"
		if table.Lookup("example.com", 0)[0] == "mutated" {
			t.Error("table was mutated through lookup result")
		}
	})

	t.Run("nil table is empty", func(t *testing.T) {
		t.Parallel()

		var nilTable *KnownURLTable
		if nilTable.Lookup("example.com", 0) != nil || nilTable.Len() != 0 {
			t.Error("expected empty nil table")
		}
	})
}

// TestDefaultLists tests the built-in domain and path lists.
func TestDefaultLists(t *testing.T) {
	t.Parallel()

	if got := len(DefaultCategoryPaths()); got != 28 {
		t.Errorf("expected 28 category paths, got %d", got)
	}
	if got := len(DefaultAntiScrapingDomains()); got != 9 {
		t.Errorf("expected 9 anti-scraping domains, got %d", got)
	}
	if got := DefaultSSLProblemDomains(); len(got) != 1 || got[0] != "afghankitchenrecipes.com" {
		t.Errorf("unexpected ssl problem domains: %v", got)
	}

	cf := NewFile()
	cf.CategoryPaths = []string{"/x"}
	if got := cf.CategoryPathList(); len(got) != 1 {
		t.Errorf("expected file category paths to win, got %v", got)
	}
	if got := cf.KnownURLTable().Len(); got != 10 {
		t.Errorf("expected built-in table through file, got %d", got)
	}
}

// TestIsEnglishSite tests the language filter.
func TestIsEnglishSite(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected bool
	}{
		{"https://www.allrecipes.com/", true},
		{"https://www.bbcgoodfood.com/", true},
		{"https://www.marmiton.fr/", false},
		{"https://www.chefkoch.de/", false},
		{"https://www.smulweb.nl/", false},
		{"https://www.recetasgratis.es/", false},
		{"https://www.giallozafferano.it/", false},
		{"https://15gram.be/", false},
		{"rezepte-example.com", false},
		{"example.com", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			if got := IsEnglishSite(tc.input); got != tc.expected {
				t.Errorf("IsEnglishSite(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

// TestLoadSiteList tests both site list formats.
func TestLoadSiteList(t *testing.T) {
	t.Parallel()

	t.Run("plain text with names and comments", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "sites.txt")
		content := "# recipe sites\nAll Recipes,https://www.allrecipes.com/\nexample.com\n\nexample.com\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write site list: %v", err)
		}

		sites, err := LoadSiteList(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sites) != 2 {
			t.Fatalf("expected 2 sites after dedupe, got %v", sites)
		}
		if sites[0].Name != "All Recipes" || sites[0].Domain != "allrecipes.com" {
			t.Errorf("unexpected first site: %+v", sites[0])
		}
		if sites[1].Name != "example.com" {
			t.Errorf("expected domain as name, got %+v", sites[1])
		}
	})

	t.Run("yaml sequence", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "sites.yaml")
		content := "- name: Example\n  domain: example.com\n- domain: other.org\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write site list: %v", err)
		}

		sites, err := LoadSiteList(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sites) != 2 || sites[1].Name != "other.org" {
			t.Errorf("unexpected sites: %v", sites)
		}
	})

	t.Run("missing file is unreadable", func(t *testing.T) {
		t.Parallel()

		_, err := LoadSiteList(filepath.Join(t.TempDir(), "missing.txt"))
		if !errors.Is(err, ErrSiteListUnreadable) {
			t.Errorf("expected ErrSiteListUnreadable, got %v", err)
		}
	})

	t.Run("empty file has no sites", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.txt")
		if err := os.WriteFile(path, []byte("# nothing\n"), 0600); err != nil {
			t.Fatalf("failed to write site list: %v", err)
		}
		_, err := LoadSiteList(path)
		if !errors.Is(err, ErrNoSites) {
			t.Errorf("expected ErrNoSites, got %v", err)
		}
	})

	t.Run("invalid yaml is unreadable", func(t *testing.T) {
		t.Parallel()

		_, err := ParseSiteList([]byte("- [unclosed"))
		if !errors.Is(err, ErrSiteListUnreadable) {
			t.Errorf("expected ErrSiteListUnreadable, got %v", err)
		}
	})
}

// TestParseSiteListSchemes tests which schemes survive normalization.
func TestParseSiteListSchemes(t *testing.T) {
	t.Parallel()

	sites, err := ParseSiteList([]byte("Local,http://127.0.0.1:8080/\nhttps://www.example.com/\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("expected 2 sites, got %v", sites)
	}
	if sites[0].Domain != "http://127.0.0.1:8080" {
		t.Errorf("expected the http scheme to be kept, got %q", sites[0].Domain)
	}
	if sites[1].Domain != "example.com" {
		t.Errorf("expected https to be dropped, got %q", sites[1].Domain)
	}
}

package crawler

import (
	"testing"
)

// TestSameSite tests registrable-domain scoping.
func TestSameSite(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"same host", "https://example.com/a", "https://example.com/b", true},
		{"www prefix", "https://www.example.com/", "https://example.com/x", true},
		{"subdomain", "https://cooking.nytimes.com/", "https://www.nytimes.com/", true},
		{"public suffix boundary", "https://a.github.io/", "https://b.github.io/", false},
		{"co.uk", "https://www.bbcgoodfood.co.uk/", "https://recipes.bbcgoodfood.co.uk/", true},
		{"different sites", "https://example.com/", "https://example.org/", false},
		{"ip with same port", "http://127.0.0.1:8080/a", "http://127.0.0.1:8080/b", true},
		{"ip with different port", "http://127.0.0.1:8080/a", "http://127.0.0.1:9090/b", false},
		{"relative url", "/a", "https://example.com/", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SameSite(tc.a, tc.b); got != tc.expected {
				t.Errorf("SameSite(%q, %q) = %v, expected %v", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}

// TestNormalizeURL tests URL normalization for deduplication.
func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{"HTTPS://Example.COM", "https://example.com/"},
		{"https://example.com/recipe/#comments", "https://example.com/recipe/"},
		{"https://example.com/Recipe/Cake", "https://example.com/Recipe/Cake"},
		{"https://example.com/?q=1", "https://example.com/?q=1"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeURL(tc.input); got != tc.expected {
				t.Errorf("NormalizeURL(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

// TestSiteHelpers tests target parsing and path joining.
func TestSiteHelpers(t *testing.T) {
	t.Parallel()

	t.Run("bare domain defaults to https", func(t *testing.T) {
		t.Parallel()

		root, err := SiteRoot("www.allrecipes.com/recipes/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if root != "https://www.allrecipes.com" {
			t.Errorf("unexpected root %q", root)
		}
	})

	t.Run("http scheme is kept", func(t *testing.T) {
		t.Parallel()

		if got := JoinPath("http://127.0.0.1:8080/start", "recipes"); got != "http://127.0.0.1:8080/recipes" {
			t.Errorf("unexpected join %q", got)
		}
	})

	t.Run("empty target is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseTarget(""); err == nil {
			t.Error("expected error")
		}
	})
}

// TestIgnored tests glob-based URL filtering.
func TestIgnored(t *testing.T) {
	t.Parallel()

	patterns := []string{"/shop/*", "*.pdf", "/page/?"}

	testCases := []struct {
		url      string
		expected bool
	}{
		{"https://example.com/shop/knives", true},
		{"https://example.com/shop", true},
		{"https://example.com/docs/menu.pdf", true},
		{"https://example.com/page/2", true},
		{"https://example.com/recipe/cake/", false},
		{"https://example.com/", false},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			t.Parallel()
			if got := Ignored(patterns, tc.url); got != tc.expected {
				t.Errorf("Ignored(%q) = %v, expected %v", tc.url, got, tc.expected)
			}
		})
	}

	if Ignored(nil, "https://example.com/shop/x") {
		t.Error("no patterns must ignore nothing")
	}
}

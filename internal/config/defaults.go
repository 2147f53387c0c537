package config

import (
	_ "embed"
	"net"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed known_urls.yaml
var knownURLsYAML []byte

var (
	knownURLsOnce sync.Once
	knownURLs     map[string][]string
)

// DefaultKnownURLs returns a copy of the built-in known-URL table.
// The embedded YAML is parsed once; a parse failure yields an empty table.
func DefaultKnownURLs() map[string][]string {
	knownURLsOnce.Do(func() {
		knownURLs = make(map[string][]string)
		if err := yaml.Unmarshal(knownURLsYAML, &knownURLs); err != nil {
			knownURLs = make(map[string][]string)
		}
	})

	out := make(map[string][]string, len(knownURLs))
	for k, v := range knownURLs {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// DefaultCategoryPaths returns the category paths guessed on every site.
func DefaultCategoryPaths() []string {
	return []string{
		"/recipes",
		"/recipe-index",
		"/diet/gluten-free",
		"/diet/dairy-free",
		"/diet/vegan",
		"/diet/vegetarian",
		"/category/desserts",
		"/category/main-dishes",
		"/category/breakfast",
		"/category/dinner",
		"/category/lunch",
		"/category/appetizers",
		"/category/snacks",
		"/category/drinks",
		"/category/baking",
		"/cuisine/italian",
		"/cuisine/mexican",
		"/cuisine/asian",
		"/cuisine/indian",
		"/course/main-dishes",
		"/course/desserts",
		"/course/appetizers",
		"/course/sides",
		"/course/breakfast",
		"/meal/dinner",
		"/meal/lunch",
		"/meal/breakfast",
		"/meal/snacks",
	}
}

// DefaultAntiScrapingDomains returns sites known to block plain HTTP clients.
func DefaultAntiScrapingDomains() []string {
	return []string{
		"theloopywhisk.com",
		"nytimes.com",
		"cooking.nytimes.com",
		"bonappetit.com",
		"epicurious.com",
		"foodandwine.com",
		"seriouseats.com",
		"smittenkitchen.com",
		"thekitchn.com",
	}
}

// DefaultSSLProblemDomains returns sites skipped because of broken TLS setups.
func DefaultSSLProblemDomains() []string {
	return []string{"afghankitchenrecipes.com"}
}

// KnownURLTable is an immutable domain to recipe URL table.
// It is built once at startup and shared read-only by all workers.
type KnownURLTable struct {
	entries map[string][]string
	keys    []string
}

// NewKnownURLTable copies m into a new table.
func NewKnownURLTable(m map[string][]string) *KnownURLTable {
	t := &KnownURLTable{entries: make(map[string][]string, len(m))}
	for k, v := range m {
		key := NormalizeDomain(k)
		t.entries[key] = append([]string(nil), v...)
		t.keys = append(t.keys, key)
	}
	sort.Strings(t.keys)
	return t
}

// Lookup returns up to limit URLs for the domain; limit <= 0 means all.
// A subdomain falls back to the longest key it belongs to, so
// "cooking.example.com" finds "example.com" while "eats.com" never
// finds "seriouseats.com".
func (t *KnownURLTable) Lookup(domain string, limit int) []string {
	if t == nil {
		return nil
	}
	d := NormalizeDomain(domain)
	if host, _, err := net.SplitHostPort(d); err == nil {
		d = host
	}
	if d == "" {
		return nil
	}

	urls, ok := t.entries[d]
	if !ok {
		best := ""
		for _, key := range t.keys {
			if strings.HasSuffix(d, "."+key) && len(key) > len(best) {
				best = key
			}
		}
		urls = t.entries[best]
	}
	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	return append([]string(nil), urls...)
}

// Len returns the number of domains in the table.
func (t *KnownURLTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

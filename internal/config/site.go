package config

import (
	"strings"
	"time"

	"github.com/nao1215/recipescout/internal/model"
)

// SiteConfig holds site-specific crawl settings.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers for requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global user agent.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Depth overrides the global crawl depth. Zero means use the global value.
	Depth int `yaml:"depth,omitempty"`

	// MaxResults overrides the result budget. Zero means use the global value.
	MaxResults int `yaml:"max_results,omitempty"`

	// DelayMin and DelayMax override the politeness delay range.
	DelayMin time.Duration `yaml:"delay_min,omitempty"`
	DelayMax time.Duration `yaml:"delay_max,omitempty"`

	// Timeout overrides the HTTP timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// UseBrowser forces the headless browser strategy on or off.
	UseBrowser *bool `yaml:"use_browser,omitempty"`

	// CategoryPaths are seed paths tried before the global category paths.
	CategoryPaths []string `yaml:"category_paths,omitempty"`

	// IgnorePatterns are glob patterns matched against URL paths; matches are never crawled.
	IgnorePatterns []string `yaml:"ignore_patterns,omitempty"`
}

// File represents the structure of the .recipescout.yaml configuration file.
type File struct {
	// Sites maps domains (without scheme or "www.") to site-specific settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to all sites unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// KnownURLs is the direct fallback table of verified recipe URLs per domain.
	// Entries are merged over the built-in table.
	KnownURLs map[string][]string `yaml:"known_urls,omitempty"`

	// CategoryPaths replaces the built-in category path guesses when set.
	CategoryPaths []string `yaml:"category_paths,omitempty"`

	// AntiScrapingDomains replaces the built-in list of sites that need a browser.
	AntiScrapingDomains []string `yaml:"anti_scraping_domains,omitempty"`

	// SSLProblemDomains replaces the built-in list of sites skipped for TLS problems.
	SSLProblemDomains []string `yaml:"ssl_problem_domains,omitempty"`

	// SiteList is the list of sites processed by build-library.
	SiteList []model.Site `yaml:"site_list,omitempty"`

	// ProxyURL routes HTTP fetches through a proxy.
	ProxyURL string `yaml:"proxy_url,omitempty"`

	// Thresholds overrides individual classifier constants.
	Thresholds *Thresholds `yaml:"thresholds,omitempty"`
}

// NewFile returns an empty configuration file with initialized maps.
func NewFile() *File {
	return &File{
		Sites:     make(map[string]SiteConfig),
		KnownURLs: make(map[string][]string),
	}
}

// GetSiteConfig returns the configuration for a domain.
// It merges the site-specific configuration with defaults.
// The domain is normalized the same way as the site keys.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	result := cf.Defaults
	// Copy the defaults' header map so merging never mutates the shared defaults.
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	siteConfig, ok := cf.Sites[NormalizeDomain(domain)]
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	if siteConfig.Depth != 0 {
		result.Depth = siteConfig.Depth
	}
	if siteConfig.MaxResults != 0 {
		result.MaxResults = siteConfig.MaxResults
	}
	if siteConfig.DelayMin != 0 {
		result.DelayMin = siteConfig.DelayMin
	}
	if siteConfig.DelayMax != 0 {
		result.DelayMax = siteConfig.DelayMax
	}
	if siteConfig.Timeout != 0 {
		result.Timeout = siteConfig.Timeout
	}
	if siteConfig.UseBrowser != nil {
		result.UseBrowser = siteConfig.UseBrowser
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if len(siteConfig.CategoryPaths) > 0 {
		result.CategoryPaths = siteConfig.CategoryPaths
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}

	return result
}

// KnownURLTable returns the built-in known-URL table with the file's entries merged on top.
func (cf *File) KnownURLTable() *KnownURLTable {
	merged := make(map[string][]string)
	for k, v := range DefaultKnownURLs() {
		merged[k] = v
	}
	for k, v := range cf.KnownURLs {
		merged[NormalizeDomain(k)] = v
	}
	return NewKnownURLTable(merged)
}

// CategoryPathList returns the configured category paths or the built-in ones.
func (cf *File) CategoryPathList() []string {
	if len(cf.CategoryPaths) > 0 {
		return append([]string(nil), cf.CategoryPaths...)
	}
	return DefaultCategoryPaths()
}

// AntiScrapingList returns the configured anti-scraping domains or the built-in ones.
func (cf *File) AntiScrapingList() []string {
	if len(cf.AntiScrapingDomains) > 0 {
		return append([]string(nil), cf.AntiScrapingDomains...)
	}
	return DefaultAntiScrapingDomains()
}

// SSLProblemList returns the configured SSL problem domains or the built-in ones.
func (cf *File) SSLProblemList() []string {
	if len(cf.SSLProblemDomains) > 0 {
		return append([]string(nil), cf.SSLProblemDomains...)
	}
	return DefaultSSLProblemDomains()
}

// NormalizeDomain lower-cases a domain or URL and strips the scheme,
// a leading "www.", and anything after the host.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return d
}

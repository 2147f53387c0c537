package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Crawl budgets, worker counts, and delays follow the values the recipe
// library builder has always used.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "recipescout"

	// DefaultMaxResults is the number of recipe URLs find-recipes looks for.
	DefaultMaxResults = 5

	// DefaultMaxDepth bounds how many link hops a crawl follows from its seeds.
	DefaultMaxDepth = 3

	// DefaultWorkers is the number of sites crawled concurrently within a batch.
	DefaultWorkers = 4

	// DefaultBatchSize is the number of sites per sequential batch.
	// Batches never overlap, which caps open connections and browser instances.
	DefaultBatchSize = 20

	// DefaultRecipesPerSite is the per-site result budget for build-library.
	DefaultRecipesPerSite = 2

	// DefaultDelayMin and DefaultDelayMax bound the random politeness delay
	// drawn before each recipe fetch.
	DefaultDelayMin = 1 * time.Second
	DefaultDelayMax = 3 * time.Second

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRenderTimeout is the per-page headless browser navigation timeout.
	DefaultRenderTimeout = 30 * time.Second

	// DefaultSiteTimeout is the wall-clock limit for one site in build-library.
	DefaultSiteTimeout = 5 * time.Minute

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent is a desktop Chrome user agent. Many recipe sites
	// serve bot pages to anything that does not look like a browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultDBName is the SQLite file name inside the data directory.
	DefaultDBName = "recipes.db"

	// DefaultProbeLimit is the number of category pages the probe strategy visits.
	DefaultProbeLimit = 5
)

// Config holds all configuration options for recipescout.
// It is populated from CLI flags and the optional YAML file and passed
// down explicitly; nothing reads global state.
type Config struct {
	// MaxResults is the number of recipe URLs to find per site.
	MaxResults int

	// MaxDepth is the maximum link depth explored from the seed URLs.
	// Depth 0 means only the seeds are fetched.
	MaxDepth int

	// Workers is the number of sites processed concurrently within a batch.
	Workers int

	// BatchSize is the number of sites per sequential batch.
	BatchSize int

	// RecipesPerSite is the result budget per site for build-library.
	RecipesPerSite int

	// SiteLimit caps the number of sites taken from the site list. Zero means all.
	SiteLimit int

	// DelayMin and DelayMax bound the random delay before each recipe fetch.
	DelayMin time.Duration
	DelayMax time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RenderTimeout is the per-page headless browser timeout.
	RenderTimeout time.Duration

	// SiteTimeout is the wall-clock budget for one site.
	SiteTimeout time.Duration

	// UserAgent is sent with HTTP requests and by the headless browser.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// ProxyURL routes HTTP fetches through a proxy (http, https, or socks5 scheme).
	// Empty means a direct connection.
	ProxyURL string

	// UseBrowser enables the headless browser strategy.
	UseBrowser bool

	// RespectRobots makes the lightweight strategy honor robots.txt.
	RespectRobots bool

	// EnglishOnly drops sites that look non-English before crawling.
	EnglishOnly bool

	// Verify re-checks candidate URLs with the content classifier.
	Verify bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches the log output to JSON.
	JSONLog bool

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// StatsDir is where build-library writes run statistics JSON files.
	StatsDir string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .recipescout.yaml is searched in the current and home directories.
	ConfigFilePath string

	// SiteListPath is the path to a site list for build-library.
	// When empty, the site_list section of the configuration file is used.
	SiteListPath string

	// SiteConfigs holds the configuration file contents.
	// Never nil after NewConfig.
	SiteConfigs *File

	// Thresholds are the classifier constants.
	Thresholds Thresholds

	// JSONReport and MarkdownReport select the statistics output format.
	// They are mutually exclusive; neither means the simple text report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxResults:     DefaultMaxResults,
		MaxDepth:       DefaultMaxDepth,
		Workers:        DefaultWorkers,
		BatchSize:      DefaultBatchSize,
		RecipesPerSite: DefaultRecipesPerSite,
		DelayMin:       DefaultDelayMin,
		DelayMax:       DefaultDelayMax,
		Timeout:        DefaultTimeout,
		RenderTimeout:  DefaultRenderTimeout,
		SiteTimeout:    DefaultSiteTimeout,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		UseBrowser:     true,
		RespectRobots:  true,
		EnglishOnly:    true,
		SiteConfigs:    NewFile(),
		Thresholds:     DefaultThresholds(),
	}
}

// XDGDataDir returns the XDG data directory for recipescout.
// On Linux: ~/.local/share/recipescout
// On macOS: ~/Library/Application Support/recipescout
// On Windows: %LOCALAPPDATA%\recipescout
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for recipescout.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for recipescout.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// StatsDirOrDefault returns StatsDir, or "stats" under the data directory.
func (c *Config) StatsDirOrDefault() string {
	if c.StatsDir != "" {
		return c.StatsDir
	}
	return filepath.Join(c.DBDirOrDefault(), "stats")
}

// DBDirOrDefault returns DBDir, or the XDG data directory.
func (c *Config) DBDirOrDefault() string {
	if c.DBDir != "" {
		return c.DBDir
	}
	return XDGDataDir()
}

// ApplyFile copies the file defaults onto the config.
// Values given on the command line are applied afterwards by the caller.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.SiteConfigs = f
	d := f.Defaults
	if d.UserAgent != "" {
		c.UserAgent = d.UserAgent
	}
	if d.DelayMin > 0 {
		c.DelayMin = d.DelayMin
	}
	if d.DelayMax > 0 {
		c.DelayMax = d.DelayMax
	}
	if d.Timeout > 0 {
		c.Timeout = d.Timeout
	}
	if d.MaxResults > 0 {
		c.MaxResults = d.MaxResults
	}
	if d.Depth > 0 {
		c.MaxDepth = d.Depth
	}
	if d.UseBrowser != nil {
		c.UseBrowser = *d.UseBrowser
	}
	if f.ProxyURL != "" {
		c.ProxyURL = f.ProxyURL
	}
	if f.Thresholds != nil {
		c.Thresholds = c.Thresholds.Merge(*f.Thresholds)
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
// Validation runs once, before any crawling starts.
func (c *Config) Validate() error {
	if c.MaxResults <= 0 {
		return ErrInvalidMaxResults
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.RecipesPerSite <= 0 {
		return ErrInvalidRecipesPerSite
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return ErrInvalidDelayRange
	}
	if c.Timeout <= 0 || c.RenderTimeout <= 0 || c.SiteTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return c.Thresholds.Validate()
}

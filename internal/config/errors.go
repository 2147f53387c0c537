package config

import "errors"

// Configuration validation errors.
// These are fatal: the CLI reports them and exits non-zero before any
// crawling starts. Callers match them with errors.Is.
var (
	// ErrInvalidMaxResults is returned when the result budget is not positive.
	ErrInvalidMaxResults = errors.New("invalid max urls: must be positive")

	// ErrInvalidMaxDepth is returned when the depth budget is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidRecipesPerSite is returned when the per-site budget is not positive.
	ErrInvalidRecipesPerSite = errors.New("invalid recipes per site: must be positive")

	// ErrInvalidDelayRange is returned when the delay range is negative or inverted.
	ErrInvalidDelayRange = errors.New("invalid delay range: min must be non-negative and not above max")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidThresholds is returned when classifier thresholds or weights are out of range.
	ErrInvalidThresholds = errors.New("invalid thresholds: scores must be within 0-100 and weights non-negative")

	// ErrNoSites is returned when build-library has nothing to crawl.
	ErrNoSites = errors.New("no sites: provide --sites or a site_list in the configuration file")

	// ErrSiteListUnreadable is returned when the site list cannot be read or parsed.
	ErrSiteListUnreadable = errors.New("site list unreadable")

	// ErrEmptyDomain is returned when a domain argument is empty.
	ErrEmptyDomain = errors.New("empty domain")
)

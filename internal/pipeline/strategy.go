package pipeline

import (
	"context"
)

// Strategy names used in logs, results and statistics.
const (
	StrategyRendered    = "rendered"
	StrategyLightweight = "lightweight"
	StrategyProbe       = "category_probe"
	StrategyDirect      = "direct"
)

// Outcome is how a strategy run ended.
type Outcome int

const (
	// OutcomeOK means at least one recipe URL was found.
	OutcomeOK Outcome = iota

	// OutcomeEmpty means the strategy ran and found nothing.
	OutcomeEmpty

	// OutcomeUnavailable means the strategy's collaborator could not be used,
	// e.g. no browser is installed or the start URL is invalid.
	OutcomeUnavailable

	// OutcomeBlocked means the site refused the strategy's requests.
	// The chain escalates to the rendered strategy on this outcome.
	OutcomeBlocked
)

// String returns the lower-case outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Request is the input of one strategy run.
type Request struct {
	// StartURL is the site root or any page of the site.
	StartURL string

	// MaxResults is the number of recipe URLs wanted.
	MaxResults int

	// MaxDepth bounds link hops from the seeds.
	MaxDepth int

	// CategoryPaths are site-specific seed paths tried before the global ones.
	CategoryPaths []string

	// IgnorePatterns are glob patterns for paths that are never crawled.
	IgnorePatterns []string
}

// Result is the output of one strategy run. Strategies never return errors;
// failures are reported through Outcome and Err.
type Result struct {
	Strategy string
	URLs     []string
	Outcome  Outcome

	// Err is the error that ended the run early, if any.
	Err error

	// Fetched and Failed count pages loaded and pages that failed to load.
	Fetched int
	Failed  int
}

// Strategy discovers recipe URLs on one site.
type Strategy interface {
	// Name returns the strategy's name for logging purposes.
	Name() string

	// Find looks for up to req.MaxResults recipe URLs.
	// It must not panic on network errors and must honor ctx.
	Find(ctx context.Context, req Request) Result
}

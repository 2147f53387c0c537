package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/recipescout/internal/crawler"
)

// ChainResult is the outcome of running a strategy chain on one site.
type ChainResult struct {
	// URLs are the de-duplicated recipe URLs in discovery order.
	URLs []string

	// Strategy names the first strategy that contributed URLs.
	// Empty when nothing was found.
	Strategy string

	// FallbackUsed is true when Strategy was not the first strategy tried.
	FallbackUsed bool

	// Attempts holds every strategy run in execution order.
	Attempts []Result
}

// Tried reports whether the named strategy ran.
func (r ChainResult) Tried(name string) bool {
	for _, a := range r.Attempts {
		if a.Strategy == name {
			return true
		}
	}
	return false
}

// Failed reports whether the named strategy ran and found nothing.
func (r ChainResult) Failed(name string) bool {
	for _, a := range r.Attempts {
		if a.Strategy == name && a.Outcome != OutcomeOK {
			return true
		}
	}
	return false
}

// Chain tries strategies in order until enough recipe URLs are found.
// Each strategy's output is de-duplicated against the output of the
// strategies before it. A chain never fails; a strategy that errors or
// panics simply contributes nothing.
type Chain struct {
	strategies []Strategy

	// escalation runs right after a strategy reports OutcomeBlocked,
	// unless it is already part of the chain.
	escalation Strategy

	logger *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithChainLogger sets a custom logger for the chain.
func WithChainLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithEscalation sets the strategy to run when a site blocks a strategy.
func WithEscalation(s Strategy) ChainOption {
	return func(c *Chain) {
		c.escalation = s
	}
}

// NewChain creates a chain. Strategies should be added using AddStrategy.
func NewChain(opts ...ChainOption) *Chain {
	c := &Chain{
		strategies: make([]Strategy, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// AddStrategy appends a strategy. Strategies run in the order they are added.
func (c *Chain) AddStrategy(s Strategy) {
	if s != nil {
		c.strategies = append(c.strategies, s)
	}
}

// AddStrategies appends multiple strategies.
func (c *Chain) AddStrategies(strategies ...Strategy) {
	for _, s := range strategies {
		c.AddStrategy(s)
	}
}

// StrategyNames returns the strategy names in execution order.
func (c *Chain) StrategyNames() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Find runs the strategies until req.MaxResults URLs are collected or every
// strategy has run. Results never exceed req.MaxResults.
func (c *Chain) Find(ctx context.Context, req Request) ChainResult {
	maxResults := max(req.MaxResults, 1)
	req.MaxResults = maxResults

	var res ChainResult
	seen := make(map[string]struct{})

	queue := append([]Strategy(nil), c.strategies...)
	escalated := false

	for i := 0; i < len(queue); i++ {
		if len(res.URLs) >= maxResults {
			break
		}
		if ctx.Err() != nil {
			c.logger.Warn("strategy chain cancelled", "site", req.StartURL, "reason", ctx.Err())
			break
		}

		s := queue[i]
		started := time.Now()
		r := c.run(ctx, s, req)
		res.Attempts = append(res.Attempts, r)

		added := 0
		for _, u := range r.URLs {
			if len(res.URLs) >= maxResults {
				break
			}
			key := crawler.NormalizeURL(u)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			res.URLs = append(res.URLs, key)
			added++
		}

		c.logger.Info("strategy finished",
			"site", req.StartURL,
			"strategy", s.Name(),
			"outcome", r.Outcome.String(),
			"count", added,
			"elapsed", time.Since(started),
		)
		if r.Err != nil {
			c.logger.Debug("strategy error", "site", req.StartURL, "strategy", s.Name(), "error", r.Err)
		}

		if added > 0 && res.Strategy == "" {
			res.Strategy = s.Name()
			res.FallbackUsed = i > 0
		}

		if r.Outcome == OutcomeBlocked && !escalated && c.escalation != nil && !contains(queue, c.escalation.Name()) {
			escalated = true
			c.logger.Info("site blocked requests, escalating", "site", req.StartURL, "strategy", c.escalation.Name())
			queue = append(queue[:i+1], append([]Strategy{c.escalation}, queue[i+1:]...)...)
		}
	}

	return res
}

// run executes one strategy, converting a panic into an empty result.
func (c *Chain) run(ctx context.Context, s Strategy, req Request) (r Result) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("strategy panicked", "site", req.StartURL, "strategy", s.Name(), "panic", p)
			r = Result{
				Strategy: s.Name(),
				Outcome:  OutcomeUnavailable,
				Err:      fmt.Errorf("strategy %s panicked: %v", s.Name(), p),
			}
		}
	}()
	r = s.Find(ctx, req)
	if r.Strategy == "" {
		r.Strategy = s.Name()
	}
	return r
}

func contains(strategies []Strategy, name string) bool {
	for _, s := range strategies {
		if s.Name() == name {
			return true
		}
	}
	return false
}

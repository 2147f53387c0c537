package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/nao1215/recipescout/internal/classify"
	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/crawler"
	"github.com/nao1215/recipescout/internal/model"
)

// StrategyOption configures the strategies in this package.
// Options that do not apply to a strategy are ignored by it.
type StrategyOption func(*strategyConfig)

type strategyConfig struct {
	urls          *classify.URLClassifier
	content       *classify.ContentClassifier
	hooks         *HookRegistry
	categoryPaths []string
	probeLimit    int
	robots        *crawler.RobotsAgent
	limiter       *crawler.Limiter
	logger        *slog.Logger
}

// WithURLClassifier sets the URL classifier.
func WithURLClassifier(c *classify.URLClassifier) StrategyOption {
	return func(s *strategyConfig) {
		if c != nil {
			s.urls = c
		}
	}
}

// WithContentClassifier sets the content classifier.
func WithContentClassifier(c *classify.ContentClassifier) StrategyOption {
	return func(s *strategyConfig) {
		if c != nil {
			s.content = c
		}
	}
}

// WithHooks sets the site hook registry.
func WithHooks(r *HookRegistry) StrategyOption {
	return func(s *strategyConfig) {
		if r != nil {
			s.hooks = r
		}
	}
}

// WithCategoryPaths replaces the global category path guesses.
func WithCategoryPaths(paths []string) StrategyOption {
	return func(s *strategyConfig) {
		s.categoryPaths = append([]string(nil), paths...)
	}
}

// WithProbeLimit sets how many category pages the probe strategy visits.
func WithProbeLimit(n int) StrategyOption {
	return func(s *strategyConfig) {
		if n > 0 {
			s.probeLimit = n
		}
	}
}

// WithRobots makes HTTP strategies consult robots.txt.
func WithRobots(a *crawler.RobotsAgent) StrategyOption {
	return func(s *strategyConfig) {
		s.robots = a
	}
}

// WithLimiter paces page loads.
func WithLimiter(l *crawler.Limiter) StrategyOption {
	return func(s *strategyConfig) {
		s.limiter = l
	}
}

// WithStrategyLogger sets a custom logger.
func WithStrategyLogger(logger *slog.Logger) StrategyOption {
	return func(s *strategyConfig) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newStrategyConfig(opts []StrategyOption) strategyConfig {
	cfg := strategyConfig{
		categoryPaths: config.DefaultCategoryPaths(),
		probeLimit:    config.DefaultProbeLimit,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.urls == nil {
		cfg.urls = classify.NewURLClassifier()
	}
	if cfg.hooks == nil {
		cfg.hooks = DefaultHooks()
	}
	if cfg.content == nil {
		cfg.content = classify.NewContentClassifier(cfg.hooks.ContentOptions()...)
	}
	return cfg
}

type loadFunc func(ctx context.Context, rawURL string) (*model.Page, error)

// crawlBatch is the number of candidates dequeued per round. Links found on
// a page are ranked against the queue only between rounds, so a batch of one
// keeps newly found recipe links ahead of every queued category page.
const crawlBatch = 1

// frontierCrawl is the frontier-driven expansion shared by the rendered and
// lightweight strategies. Only the page loader differs between them.
type frontierCrawl struct {
	name string
	load loadFunc
	cfg  strategyConfig
}

func (c *frontierCrawl) Name() string {
	return c.name
}

// Find seeds a fresh frontier and expands it until it is satisfied or runs dry.
func (c *frontierCrawl) Find(ctx context.Context, req Request) Result {
	res := Result{Strategy: c.name, Outcome: OutcomeEmpty}
	if c.load == nil {
		res.Outcome = OutcomeUnavailable
		return res
	}

	start, err := crawler.ParseTarget(req.StartURL)
	if err != nil {
		res.Outcome = OutcomeUnavailable
		res.Err = err
		return res
	}
	startURL := crawler.NormalizeURL(start.String())
	logger := c.cfg.logger.With("strategy", c.name, "site", start.Host)

	hook, _ := c.cfg.hooks.Lookup(startURL)
	frontier := crawler.NewFrontier(c.cfg.urls, req.MaxResults, req.MaxDepth)
	for _, seed := range seedURLs(startURL, hook, req.CategoryPaths, c.cfg.categoryPaths) {
		if crawler.Ignored(req.IgnorePatterns, seed) {
			continue
		}
		frontier.Offer(seed, 0)
	}

	blocked := 0
	for !frontier.IsSatisfied() {
		if ctx.Err() != nil {
			res.Err = ctx.Err()
			break
		}
		batch := frontier.NextBatch(crawlBatch)
		if len(batch) == 0 {
			break
		}
		for _, cand := range batch {
			if frontier.IsSatisfied() {
				break
			}
			if !c.cfg.robots.Allowed(ctx, cand.URL) {
				logger.Debug("disallowed by robots.txt", "url", cand.URL)
				continue
			}
			if err := c.cfg.limiter.Wait(ctx, hostOf(cand.URL)); err != nil {
				res.Err = err
				break
			}

			page, err := c.load(ctx, cand.URL)
			if err != nil {
				frontier.RecordFailure(cand.URL)
				res.Failed++
				if errors.Is(err, crawler.ErrRenderUnavailable) {
					logger.Warn("page loader unavailable", "error", err)
					res.Outcome = OutcomeUnavailable
					res.Err = err
					return res
				}
				if crawler.IsBlocked(err) {
					blocked++
				}
				logger.Debug("page load failed", "url", cand.URL, "depth", cand.Depth, "error", err)
				continue
			}
			res.Fetched++

			isRecipe, analysis := c.cfg.content.IsRecipePage(page.HTML(), cand.URL)
			analysis.IsRecipe = isRecipe
			if accepted := acceptedURL(startURL, cand.URL, page); frontier.RecordResult(accepted, analysis) {
				logger.Info("found recipe", "url", accepted, "depth", cand.Depth, "confidence", analysis.Confidence)
			}

			if !crawler.SameSite(startURL, pageURL(page, cand.URL)) {
				logger.Debug("page left the site, links ignored", "url", cand.URL, "final_url", page.FinalURL)
				continue
			}
			for _, link := range pageLinks(page, hook) {
				if crawler.Ignored(req.IgnorePatterns, link) {
					continue
				}
				frontier.Offer(link, cand.Depth+1)
			}
		}
		if res.Err != nil {
			break
		}
	}

	res.URLs = frontier.Found()
	switch {
	case len(res.URLs) > 0:
		res.Outcome = OutcomeOK
	case blocked > 0:
		res.Outcome = OutcomeBlocked
	}

	stats := frontier.Stats()
	logger.Info("crawl finished",
		"state", frontier.State().String(),
		"count", len(res.URLs),
		"visited", stats.Visited,
		"failed", stats.Failed,
		"outcome", res.Outcome.String(),
	)
	return res
}

// acceptedURL is the URL recorded for a recipe page: its canonical URL when
// that stays on the site, so tracking variants of one recipe collapse.
func acceptedURL(startURL, candURL string, page *model.Page) string {
	if page.Canonical != "" && crawler.SameSite(startURL, page.Canonical) {
		return page.Canonical
	}
	return candURL
}

// pageURL is the URL the page was finally served from.
func pageURL(page *model.Page, candURL string) string {
	if page.FinalURL != "" {
		return page.FinalURL
	}
	return candURL
}

// pageLinks returns the same-site links of page, ordered by the site hook if any.
func pageLinks(page *model.Page, hook SiteHook) []string {
	if hook.SelectLinks != nil {
		return hook.SelectLinks(page)
	}
	return page.Links
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// NewRenderedStrategy returns the strategy that loads pages in a headless browser.
// A nil renderer makes the strategy report OutcomeUnavailable.
func NewRenderedStrategy(r crawler.Renderer, opts ...StrategyOption) Strategy {
	c := &frontierCrawl{name: StrategyRendered, cfg: newStrategyConfig(opts)}
	if r != nil {
		c.load = r.Render
	}
	return c
}

// NewLightweightStrategy returns the strategy that loads pages with plain HTTP.
func NewLightweightStrategy(f crawler.Fetcher, opts ...StrategyOption) Strategy {
	c := &frontierCrawl{name: StrategyLightweight, cfg: newStrategyConfig(opts)}
	if f != nil {
		c.load = f.Fetch
	}
	return c
}

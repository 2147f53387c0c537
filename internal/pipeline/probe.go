package pipeline

import (
	"context"

	"github.com/nao1215/recipescout/internal/crawler"
)

// categoryProbe fetches a handful of category pages and keeps the links the
// URL classifier rates as recipes. Category links found on a probed page
// join the probe queue. Page content is never classified, so the results
// are unverified.
type categoryProbe struct {
	fetcher crawler.Fetcher
	cfg     strategyConfig
}

// NewCategoryProbeStrategy returns the category probing strategy.
func NewCategoryProbeStrategy(f crawler.Fetcher, opts ...StrategyOption) Strategy {
	return &categoryProbe{fetcher: f, cfg: newStrategyConfig(opts)}
}

func (p *categoryProbe) Name() string {
	return StrategyProbe
}

// Find stops after the first category page that yields recipe links.
func (p *categoryProbe) Find(ctx context.Context, req Request) Result {
	res := Result{Strategy: StrategyProbe, Outcome: OutcomeEmpty}
	if p.fetcher == nil {
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
	logger := p.cfg.logger.With("strategy", StrategyProbe, "site", start.Host)
	maxResults := max(req.MaxResults, 1)

	hook, _ := p.cfg.hooks.Lookup(startURL)
	queue := seedURLs(startURL, hook, req.CategoryPaths, p.cfg.categoryPaths)
	queued := make(map[string]struct{}, len(queue))
	for _, u := range queue {
		queued[crawler.NormalizeURL(u)] = struct{}{}
	}
	seen := make(map[string]struct{})
	blocked := 0
	probed := 0

	for i := 0; i < len(queue); i++ {
		categoryURL := queue[i]
		if probed >= p.cfg.probeLimit || len(res.URLs) > 0 {
			break
		}
		if crawler.Ignored(req.IgnorePatterns, categoryURL) || !p.cfg.robots.Allowed(ctx, categoryURL) {
			continue
		}
		if err := p.cfg.limiter.Wait(ctx, start.Host); err != nil {
			res.Err = err
			break
		}
		probed++

		page, err := p.fetcher.Fetch(ctx, categoryURL)
		if err != nil {
			res.Failed++
			if crawler.IsBlocked(err) {
				blocked++
			}
			logger.Debug("category probe failed", "url", categoryURL, "error", err)
			continue
		}
		res.Fetched++
		if !crawler.SameSite(startURL, pageURL(page, categoryURL)) {
			logger.Debug("category page left the site", "url", categoryURL, "final_url", page.FinalURL)
			continue
		}

		for _, link := range page.Links {
			if len(res.URLs) >= maxResults {
				break
			}
			if crawler.Ignored(req.IgnorePatterns, link) {
				continue
			}
			key := crawler.NormalizeURL(link)
			if p.cfg.urls.IsLikelyCategory(link) {
				// Listing pages linked from a probed page are probed too.
				if _, ok := queued[key]; !ok {
					queued[key] = struct{}{}
					queue = append(queue, key)
				}
				continue
			}
			if !p.cfg.urls.IsLikelyRecipe(link) {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			res.URLs = append(res.URLs, key)
		}
		logger.Debug("category probed", "url", categoryURL, "count", len(res.URLs))
	}

	switch {
	case len(res.URLs) > 0:
		res.Outcome = OutcomeOK
	case blocked > 0:
		res.Outcome = OutcomeBlocked
	}
	logger.Info("category probe finished", "probed", probed, "count", len(res.URLs), "outcome", res.Outcome.String())
	return res
}

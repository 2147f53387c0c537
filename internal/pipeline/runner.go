package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/crawler"
	"github.com/nao1215/recipescout/internal/model"
)

// Reasons recorded in SiteRunResult.Skipped.
const (
	SkipSSLProblem = "ssl_problem"
	SkipCancelled  = "cancelled"
)

// RecipeStore persists extracted recipes.
type RecipeStore interface {
	Add(ctx context.Context, r *model.Recipe) (int64, error)
	Close() error
}

// StoreOpener opens an independent store handle. The runner opens one per site.
type StoreOpener func(ctx context.Context) (RecipeStore, error)

// Extractor turns a fetched recipe page into a recipe.
type Extractor func(page *model.Page) (*model.Recipe, error)

// ChainBuilder builds a fresh chain for one site. renderedFirst puts the
// rendered strategy at the head of the chain.
type ChainBuilder func(site model.Site, renderedFirst bool) *Chain

// Runner crawls many sites in sequential batches. Within a batch up to
// workers sites run concurrently; each site owns its own chain, frontier
// and store handle. The failed-domains set and the result slice are the
// only state shared between workers.
type Runner struct {
	newChain  ChainBuilder
	fetcher   crawler.Fetcher
	extract   Extractor
	openStore StoreOpener

	renderer crawler.Renderer
	verifier *Verifier
	limiter  *crawler.Limiter
	sites    *config.File

	workers        int
	batchSize      int
	recipesPerSite int
	maxDepth       int
	siteTimeout    time.Duration
	useBrowser     bool
	antiScraping   []string
	sslProblem     []string
	newRunID       func() string

	failed *domainSet
	logger *slog.Logger

	mu      sync.Mutex
	results []model.SiteRunResult
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the number of sites crawled concurrently. Default is 4.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithBatchSize sets the number of sites per sequential batch. Default is 20.
func WithBatchSize(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithRecipesPerSite sets the per-site result budget. Default is 2.
func WithRecipesPerSite(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.recipesPerSite = n
		}
	}
}

// WithMaxDepth sets the crawl depth per site.
func WithMaxDepth(depth int) RunnerOption {
	return func(r *Runner) {
		if depth >= 0 {
			r.maxDepth = depth
		}
	}
}

// WithSiteTimeout bounds the wall-clock time spent on one site.
func WithSiteTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.siteTimeout = d
		}
	}
}

// WithBrowser enables or disables the rendered strategy for anti-scraping
// and previously failed domains.
func WithBrowser(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.useBrowser = enabled
	}
}

// WithAntiScrapingDomains replaces the domains that start with the rendered strategy.
func WithAntiScrapingDomains(domains []string) RunnerOption {
	return func(r *Runner) {
		r.antiScraping = normalizeDomains(domains)
	}
}

// WithSSLProblemDomains replaces the domains that are skipped.
func WithSSLProblemDomains(domains []string) RunnerOption {
	return func(r *Runner) {
		r.sslProblem = normalizeDomains(domains)
	}
}

// WithRecipeRenderer renders recipe pages whose plain fetch was blocked or
// failed transiently.
func WithRecipeRenderer(rd crawler.Renderer) RunnerOption {
	return func(r *Runner) {
		r.renderer = rd
	}
}

// WithVerification re-checks every candidate URL before it is fetched for extraction.
func WithVerification(v *Verifier) RunnerOption {
	return func(r *Runner) {
		r.verifier = v
	}
}

// WithRunnerLimiter paces recipe fetches.
func WithRunnerLimiter(l *crawler.Limiter) RunnerOption {
	return func(r *Runner) {
		r.limiter = l
	}
}

// WithSiteConfigs applies per-site settings (budgets, seed paths, ignore patterns).
func WithSiteConfigs(f *config.File) RunnerOption {
	return func(r *Runner) {
		r.sites = f
	}
}

// WithRunIDGenerator replaces the run ID generator.
func WithRunIDGenerator(gen func() string) RunnerOption {
	return func(r *Runner) {
		if gen != nil {
			r.newRunID = gen
		}
	}
}

// WithRunnerLogger sets a custom logger for the runner.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner. newChain is called once per site attempt so no
// crawl state leaks between sites.
func NewRunner(newChain ChainBuilder, fetcher crawler.Fetcher, extract Extractor, openStore StoreOpener, opts ...RunnerOption) *Runner {
	r := &Runner{
		newChain:       newChain,
		fetcher:        fetcher,
		extract:        extract,
		openStore:      openStore,
		workers:        config.DefaultWorkers,
		batchSize:      config.DefaultBatchSize,
		recipesPerSite: config.DefaultRecipesPerSite,
		maxDepth:       config.DefaultMaxDepth,
		siteTimeout:    config.DefaultSiteTimeout,
		useBrowser:     true,
		antiScraping:   normalizeDomains(config.DefaultAntiScrapingDomains()),
		sslProblem:     normalizeDomains(config.DefaultSSLProblemDomains()),
		newRunID:       uuid.NewString,
		failed:         newDomainSet(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run processes sites and returns the aggregate statistics.
// Per-site failures never abort the run; they are reported in the statistics.
// Sites not started because ctx was cancelled are reported as skipped.
func (r *Runner) Run(ctx context.Context, sites []model.Site) *model.RunStatistics {
	runID := r.newRunID()
	startedAt := time.Now()
	logger := r.logger.With("run_id", runID)

	logger.Info("starting run",
		"total_sites", len(sites),
		"workers", r.workers,
		"batch_size", r.batchSize,
		"recipes_per_site", r.recipesPerSite,
	)

	r.mu.Lock()
	r.results = make([]model.SiteRunResult, len(sites))
	r.mu.Unlock()
	done := make([]bool, len(sites))

	for batchStart := 0; batchStart < len(sites); batchStart += r.batchSize {
		if ctx.Err() != nil {
			break
		}
		batchEnd := min(batchStart+r.batchSize, len(sites))
		logger.Info("starting batch",
			"batch", batchStart/r.batchSize+1,
			"sites", batchEnd-batchStart,
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)

		for i := batchStart; i < batchEnd; i++ {
			site := sites[i]
			done[i] = true
			g.Go(func() error {
				select {
				case <-gctx.Done():
					r.store(i, skippedResult(site, SkipCancelled))
					return nil
				default:
				}

				res := r.processSite(gctx, site)
				r.store(i, res)
				return nil
			})
		}
		// Workers never return errors; a failed site is recorded in its result.
		_ = g.Wait() //nolint:errcheck
	}

	for i, site := range sites {
		if !done[i] {
			r.store(i, skippedResult(site, SkipCancelled))
		}
	}

	r.mu.Lock()
	results := append([]model.SiteRunResult(nil), r.results...)
	r.mu.Unlock()

	stats := model.NewRunStatistics(runID, startedAt, len(sites), results, time.Since(startedAt))
	logger.Info("run complete",
		"successful_sites", stats.SuccessfulSites,
		"failed_sites", stats.FailedSites,
		"total_recipes", stats.TotalRecipes,
		"elapsed", time.Since(startedAt),
	)
	return stats
}

// FailedDomains returns the domains whose lightweight strategy failed, sorted.
func (r *Runner) FailedDomains() []string {
	return r.failed.List()
}

func (r *Runner) store(i int, res model.SiteRunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[i] = res
}

// processSite discovers, fetches, extracts and stores recipes for one site.
// A panic is recovered and recorded as a site failure.
func (r *Runner) processSite(ctx context.Context, site model.Site) (res model.SiteRunResult) {
	started := time.Now()
	domain := config.NormalizeDomain(site.Domain)
	res = model.SiteRunResult{SiteID: siteID(site), Domain: domain}
	logger := r.logger.With("site", domain)

	defer func() {
		if p := recover(); p != nil {
			logger.Error("site processing panicked", "panic", p)
			res.Errors = append(res.Errors, fmt.Sprintf("panic: %v", p))
			r.failed.Add(domain)
		}
		res.Duration = time.Since(started)
	}()

	if domain == "" {
		res.Errors = append(res.Errors, "empty domain")
		return res
	}
	if matchesDomain(r.sslProblem, domain) {
		logger.Info("skipping site with known TLS problems")
		res.Skipped = SkipSSLProblem
		return res
	}

	siteCtx, cancel := context.WithTimeout(ctx, r.siteTimeout)
	defer cancel()

	req := r.request(site.Domain, domain)
	renderedFirst := r.useBrowser && (matchesDomain(r.antiScraping, domain) || r.failed.Has(domain))

	found := r.newChain(site, renderedFirst).Find(siteCtx, req)
	if found.Failed(StrategyLightweight) {
		r.failed.Add(domain)
	}

	retried := false
	if len(found.URLs) == 0 && r.useBrowser && !found.Tried(StrategyRendered) && r.failed.Has(domain) && siteCtx.Err() == nil {
		logger.Info("retrying with the rendered strategy")
		found = r.newChain(site, true).Find(siteCtx, req)
		retried = true
	}

	urls := found.URLs
	if r.verifier != nil && len(urls) > 0 {
		urls = r.verifier.Verify(siteCtx, urls)
	}

	res.Strategy = found.Strategy
	res.UsedFallbackStrategy = found.FallbackUsed || (retried && found.Strategy != "")
	res.UsedBrowser = found.Strategy == StrategyRendered

	if len(urls) == 0 {
		res.Errors = append(res.Errors, "no recipe urls found")
		if err := siteCtx.Err(); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("site aborted: %v", err))
		}
		logger.Warn("no recipe urls found")
		return res
	}

	store, err := r.openStore(siteCtx)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("open store: %v", err))
		logger.Error("failed to open store", "error", err)
		return res
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	for _, u := range urls {
		if err := r.limiter.Wait(siteCtx, hostOf(u)); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("site aborted: %v", err))
			break
		}
		res.AttemptCount++

		if err := r.scrape(siteCtx, store, u, site, found.Strategy); err != nil {
			res.Errors = append(res.Errors, err.Error())
			logger.Warn("recipe failed", "url", u, "error", err)
			continue
		}
		res.SuccessfulCount++
		logger.Info("stored recipe", "url", u)
	}

	logger.Info("site finished",
		"strategy", res.Strategy,
		"count", res.SuccessfulCount,
		"attempts", res.AttemptCount,
	)
	return res
}

// scrape fetches one recipe URL, extracts it and stores it. A plain fetch
// that was blocked or failed transiently gets one attempt in the browser.
func (r *Runner) scrape(ctx context.Context, store RecipeStore, rawURL string, site model.Site, strategy string) error {
	page, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil && crawler.IsRetryEligible(err) && r.renderer != nil {
		r.logger.Debug("rendering recipe page after failed fetch", "url", rawURL, "error", err)
		page, err = r.renderer.Render(ctx, rawURL)
	}
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	recipe, err := r.extract(page)
	if err != nil {
		return fmt.Errorf("extract %s: %w", rawURL, err)
	}
	if recipe.Notes == nil {
		recipe.Notes = make(map[string]any)
	}
	recipe.Notes["strategy"] = strategy
	if site.Name != "" {
		recipe.Notes["site"] = site.Name
	}

	if _, err := store.Add(ctx, recipe); err != nil {
		return fmt.Errorf("store %s: %w", rawURL, err)
	}
	return nil
}

// request builds the chain request for a site, applying per-site settings.
// A site listed with an explicit scheme keeps it; otherwise https is used.
func (r *Runner) request(rawDomain, domain string) Request {
	startURL := "https://" + domain + "/"
	if root, err := crawler.SiteRoot(rawDomain); err == nil {
		startURL = root + "/"
	}
	req := Request{
		StartURL:   startURL,
		MaxResults: r.recipesPerSite,
		MaxDepth:   r.maxDepth,
	}
	if r.sites == nil {
		return req
	}
	sc := r.sites.GetSiteConfig(domain)
	if sc.MaxResults > 0 {
		req.MaxResults = sc.MaxResults
	}
	if sc.Depth > 0 {
		req.MaxDepth = sc.Depth
	}
	req.CategoryPaths = sc.CategoryPaths
	req.IgnorePatterns = sc.IgnorePatterns
	return req
}

func skippedResult(site model.Site, reason string) model.SiteRunResult {
	return model.SiteRunResult{
		SiteID:  siteID(site),
		Domain:  config.NormalizeDomain(site.Domain),
		Skipped: reason,
	}
}

func siteID(site model.Site) string {
	if site.Name != "" {
		return site.Name
	}
	return config.NormalizeDomain(site.Domain)
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if n := config.NormalizeDomain(d); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// matchesDomain reports whether domain equals an entry or is a subdomain of one.
func matchesDomain(list []string, domain string) bool {
	for _, d := range list {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// domainSet is an append-only set safe for concurrent use.
type domainSet struct {
	mu sync.RWMutex
	m  map[string]struct{}
}

func newDomainSet() *domainSet {
	return &domainSet{m: make(map[string]struct{})}
}

func (s *domainSet) Add(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[domain] = struct{}{}
}

func (s *domainSet) Has(domain string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[domain]
	return ok
}

func (s *domainSet) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.m))
	for d := range s.m {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/recipescout/internal/classify"
	"github.com/nao1215/recipescout/internal/crawler"
)

// Verifier re-checks candidate URLs with the content classifier.
// URLs matching a site override's day-date shape are kept without a fetch
// and excluded URLs are dropped without one.
type Verifier struct {
	fetcher crawler.Fetcher
	content *classify.ContentClassifier
	urls    *classify.URLClassifier
	limiter *crawler.Limiter
	logger  *slog.Logger
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithVerifierLimiter paces verification fetches.
func WithVerifierLimiter(l *crawler.Limiter) VerifierOption {
	return func(v *Verifier) {
		v.limiter = l
	}
}

// WithVerifierURLClassifier sets the classifier that decides exclusions.
func WithVerifierURLClassifier(c *classify.URLClassifier) VerifierOption {
	return func(v *Verifier) {
		v.urls = c
	}
}

// WithVerifierLogger sets a custom logger.
func WithVerifierLogger(logger *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// NewVerifier creates a verifier. A nil classifier uses the default one
// with the built-in site overrides.
func NewVerifier(f crawler.Fetcher, content *classify.ContentClassifier, opts ...VerifierOption) *Verifier {
	if content == nil {
		content = classify.NewContentClassifier(DefaultHooks().ContentOptions()...)
	}
	v := &Verifier{fetcher: f, content: content}
	for _, opt := range opts {
		opt(v)
	}
	if v.urls == nil {
		v.urls = classify.NewURLClassifier()
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Verify returns the URLs whose pages classify as recipes, in input order.
// URLs that fail to load are dropped.
func (v *Verifier) Verify(ctx context.Context, urls []string) []string {
	kept := make([]string, 0, len(urls))
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		if v.urls.ShouldExclude(u) {
			v.logger.Debug("excluded url dropped", "url", u)
			continue
		}
		if v.content.HasOverride(u) && classify.IsDayDatePath(u) {
			kept = append(kept, u)
			continue
		}
		if v.fetcher == nil {
			continue
		}
		if err := v.limiter.Wait(ctx, hostOf(u)); err != nil {
			break
		}

		page, err := v.fetcher.Fetch(ctx, u)
		if err != nil {
			v.logger.Debug("verification fetch failed", "url", u, "error", err)
			continue
		}
		if ok, analysis := v.content.IsRecipePage(page.HTML(), u); ok {
			kept = append(kept, u)
		} else {
			v.logger.Debug("not a recipe page", "url", u, "confidence", analysis.Confidence)
		}
	}
	v.logger.Info("verification finished", "count", len(kept), "candidates", len(urls))
	return kept
}

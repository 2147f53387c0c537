package pipeline

import (
	"log/slog"

	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/crawler"
	"github.com/nao1215/recipescout/internal/model"
)

// ChainFactory builds per-site strategy chains from shared collaborators.
// The collaborators are read-only or safe for concurrent use; every chain
// it builds creates its own frontier per strategy run.
type ChainFactory struct {
	Fetcher   crawler.Fetcher
	Renderer  crawler.Renderer
	KnownURLs *config.KnownURLTable

	// UseBrowser enables the rendered strategy. When false, or when
	// Renderer is nil, chains contain only HTTP strategies.
	UseBrowser bool

	// Options apply to every strategy.
	Options []StrategyOption

	Logger *slog.Logger
}

// Build returns a chain of rendered, lightweight, category probe and direct
// strategies. Without renderedFirst, the rendered strategy is left out of
// the fixed order and only runs when a site blocks plain HTTP.
func (f *ChainFactory) Build(renderedFirst bool) *Chain {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var rendered Strategy
	if f.UseBrowser && f.Renderer != nil {
		rendered = NewRenderedStrategy(f.Renderer, f.Options...)
	}

	opts := []ChainOption{WithChainLogger(logger)}
	if rendered != nil && !renderedFirst {
		opts = append(opts, WithEscalation(rendered))
	}

	chain := NewChain(opts...)
	if rendered != nil && renderedFirst {
		chain.AddStrategy(rendered)
	}
	chain.AddStrategies(
		NewLightweightStrategy(f.Fetcher, f.Options...),
		NewCategoryProbeStrategy(f.Fetcher, f.Options...),
		NewDirectStrategy(f.KnownURLs, f.Options...),
	)
	return chain
}

// ForSite implements ChainBuilder.
func (f *ChainFactory) ForSite(_ model.Site, renderedFirst bool) *Chain {
	return f.Build(renderedFirst)
}

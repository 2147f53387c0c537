package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/recipescout/internal/config"
	"github.com/nao1215/recipescout/internal/crawler"
)

// directTable returns previously verified recipe URLs from the known-URL
// table without touching the network.
type directTable struct {
	table  *config.KnownURLTable
	logger *slog.Logger
}

// NewDirectStrategy returns the known-URL fallback strategy.
func NewDirectStrategy(table *config.KnownURLTable, opts ...StrategyOption) Strategy {
	cfg := newStrategyConfig(opts)
	return &directTable{table: table, logger: cfg.logger}
}

func (d *directTable) Name() string {
	return StrategyDirect
}

func (d *directTable) Find(_ context.Context, req Request) Result {
	res := Result{Strategy: StrategyDirect, Outcome: OutcomeEmpty}
	if d.table == nil {
		res.Outcome = OutcomeUnavailable
		return res
	}
	start, err := crawler.ParseTarget(req.StartURL)
	if err != nil {
		res.Outcome = OutcomeUnavailable
		res.Err = err
		return res
	}

	res.URLs = d.table.Lookup(start.Host, max(req.MaxResults, 1))
	if len(res.URLs) > 0 {
		res.Outcome = OutcomeOK
		d.logger.Info("using known recipe urls", "site", start.Host, "count", len(res.URLs))
	}
	return res
}

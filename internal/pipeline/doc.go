// Package pipeline finds recipe URLs on a site and runs that search over
// many sites.
//
// A Strategy discovers recipe URLs on one site. Four strategies exist:
//
//   - rendered: frontier-driven crawl over pages loaded in a headless browser
//   - lightweight: the same crawl over plain HTTP fetches
//   - category_probe: URL classification of links on a few category pages
//   - direct: a static table of previously verified recipe URLs
//
// A Chain runs strategies in order until enough URLs are collected,
// de-duplicating each strategy's output against the ones before it, and
// escalates to the rendered strategy when a site blocks plain HTTP.
// Site-specific behavior (seed paths, link preference, content overrides)
// lives in a HookRegistry rather than in the strategies.
//
// A Runner processes a site list in sequential batches with bounded
// concurrency (errgroup.SetLimit), fetching, extracting and storing the
// recipes each site yields and aggregating model.RunStatistics.
package pipeline

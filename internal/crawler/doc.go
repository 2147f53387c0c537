// Package crawler provides the crawl-session primitives used by the
// discovery strategies.
//
// # Components
//
//   - Frontier: per-session queue with visited, failed and found sets. Links
//     are classified by URL and dequeued in recipe, category, unknown order.
//   - HTTPFetcher: plain HTTP fetcher with a browser-like header profile,
//     gzip/deflate/brotli decoding and a typed FetchError taxonomy.
//   - ChromedpRenderer: headless Chrome renderer behind the Renderer interface.
//   - Parser: link, article-link and metadata extraction.
//   - Limiter and RobotsAgent: politeness delay, per-host rate limit and
//     robots.txt rules.
//
// # Usage
//
//	client, _ := crawler.NewHTTPClient(crawler.ClientOptions{Timeout: 10 * time.Second})
//	fetcher := crawler.NewHTTPFetcher(client)
//	frontier := crawler.NewFrontier(classify.NewURLClassifier(), 5, 3)
//	frontier.Offer("https://example.com/recipes/", 0)
//	for batch := frontier.NextBatch(1); len(batch) > 0; batch = frontier.NextBatch(1) {
//		page, err := fetcher.Fetch(ctx, batch[0].URL)
//		...
//		frontier.RecordResult(batch[0].URL, content.Analyze(page.HTML(), batch[0].URL))
//	}
//
// A Frontier belongs to exactly one strategy run and is never shared
// between sites.
package crawler

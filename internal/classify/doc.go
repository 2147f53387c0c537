// Package classify decides what a URL or a page is.
//
// URLClassifier looks only at the URL path and sorts links into recipe,
// category, exclude, and unknown classes with a 0-100 score. The crawl
// frontier uses it to prioritize and prune links before anything is fetched.
//
// ContentClassifier scores fetched HTML on five signals (structured data,
// headings, ingredient lists, instruction lists, and metadata terms) and
// combines them into a weighted confidence. Sites with unusual markup can
// register an Override that accepts their pages directly.
//
// Both classifiers are pure: no I/O, no shared mutable state.
package classify

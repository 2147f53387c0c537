// Package recipe turns a fetched recipe page into a model.Recipe.
//
// Structured data is preferred: the first schema.org Recipe found in an
// application/ld+json block wins, then itemprop microdata. Instructions
// missing from both come from the page's main text.
package recipe

// Package model defines the core data structures used throughout recipescout.
//
// This package contains the following main types:
//   - URLClassification and ContentClassification: classifier outputs
//   - Page: a fetched or rendered web page
//   - Recipe and Ingredient: the stored recipe form
//   - SiteRunResult and RunStatistics: build-library outcomes
//
// Models live in their own package because the classifier, crawler, pipeline,
// database, and report packages all share them.
//
// All types serialize to JSON for reports, import/export, and database columns.
package model

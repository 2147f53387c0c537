// Package config provides configuration structures and utilities for recipescout.
// It defines crawl budgets, worker settings, classifier thresholds, the
// per-site YAML configuration file, the built-in known-URL table, and the
// site list and language filters used by build-library.
package config

// Package database provides SQLite-based recipe storage for recipescout.
//
// RecipeDB stores:
//   - Recipes, one per source URL, with their parsed ingredients
//   - A full-text index over titles and instructions
//   - Statistics of build-library runs
//
// The driver is modernc.org/sqlite, so the binary needs no cgo. Every site
// worker opens its own RecipeDB on the same file; WAL mode and a busy
// timeout let them write side by side.
package database

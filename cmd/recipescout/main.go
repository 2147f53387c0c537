// Package main provides the entry point for the recipescout CLI.
//
// recipescout discovers recipe pages on cooking websites, extracts the
// recipes and keeps them in a local SQLite library.
//
// Usage:
//
//	recipescout find-recipes <domain>
//	recipescout build-library --sites <file>
//
// See --help for all available options.
package main

// main is the entry point for recipescout.
func main() {
	Execute()
}

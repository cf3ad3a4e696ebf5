// Package main provides the jetty CLI for querying and reconciling the
// access graph.
//
// The CLI supports:
//   - diff: Compare the desired-state configuration against the environment
//   - access: Query who can reach what, and through which privileges
//   - config: Inspect and validate configuration
//   - version: Print version information
//
// Commands that read the environment load the graph snapshot written by the
// most recent ingestion run; they do not talk to the platforms directly.
//
// Usage:
//
//	jetty [flags] <command>
package main

func main() {
	Execute()
}

// Package main hosts the sonalyze CLI entrypoint and command graph.
//
// Commands load sensor exports, run the aggregation pipeline, print tables or
// JSON, request the narrative interpretation, export workbooks, and manage
// client records. Configuration resolution, logger construction, and the
// per-run correlation id live in commandContext so subcommands only wire the
// internal packages together.
package main

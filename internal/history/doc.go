// Package history records finished runs in SQLite so later invocations can
// list them and compare a new run against the previous one.
//
// Each run row carries the source, multiplier, terminal status and summary
// counters; run_files holds the terminal state of every file. Schema changes
// bump the version in schema.go; users delete the database to adopt the new
// schema.
package history

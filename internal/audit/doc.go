// Package audit writes the per-run processing log stored beside the results.
//
// A log starts with a header block naming the source, multiplier and tool,
// receives one line per event through the handler returned by Log.Handler,
// and ends with a trailer carrying the final status and summary counters.
// Tail reads a log back for the CLI, optionally following a run in progress.
package audit

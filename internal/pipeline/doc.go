// Package pipeline orchestrates a rescale run: preflight validation, the
// source backup, per-moveset processing and the final report.
//
// Runner.Preflight checks a Request in a fixed order and produces a Plan
// without touching the results root. Runner.Execute then takes the results
// lock, opens the audit log, snapshots the source and walks the movesets in
// discovery order. Inside a moveset, preserved assets and support files are
// copied through first; processable files then pass through three phases
// (extract, rescale, merge) that never interleave. A failed file is counted
// and logged while its siblings continue.
//
// The run executes on the caller's goroutine. Cancellation is cooperative:
// the CancelToken and the context are polled before every moveset and every
// file, and a tool invocation already in flight is allowed to finish.
package pipeline

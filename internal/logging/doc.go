// Package logging assembles structured slog loggers and formatting helpers used
// across hkxshift.
//
// It owns the console and JSON handlers for interactive output, the line
// handler behind each run's audit log, and the fanout handler that joins the
// two so one logger call reaches both sinks at their own verbosity. Context
// helpers tag records with run id, moveset, and phase. A no-op logger serves
// tests and wiring code that cannot fail.
package logging

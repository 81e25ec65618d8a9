// Package main hosts the hkxshift CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the rescale run itself, source
// inspection, environment status, run history, audit log tailing and
// configuration scaffolding. It centralizes configuration resolution and
// console logging setup so subcommands can focus on presentation.
//
// Keep this package lean: behaviour belongs in the internal packages and is
// surfaced here through commands and flags.
package main

// Package services defines shared utilities consumed by the pipeline phases
// and the external tool integration.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, moveset names, and phase names for
//     logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into a consistent taxonomy (precondition, external tool, io).
//
// Use these helpers when wiring new phase logic so failure accounting and
// observability stay uniform across the pipeline.
package services

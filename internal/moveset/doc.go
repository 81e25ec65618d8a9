// Package moveset resolves a source directory into the movesets to process
// and decides, once per run, between batch and single mode.
package moveset

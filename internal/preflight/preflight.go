package preflight

import (
	"hkxshift/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the environment checks for the given config. The results
// root and history location are reported even before their first use.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckTool(cfg))
	results = append(results, CheckResultsRoot(cfg))

	// History database (when enabled)
	results = append(results, CheckHistory(cfg))

	return results
}

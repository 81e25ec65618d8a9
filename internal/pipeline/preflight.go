package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"hkxshift/internal/logging"
	"hkxshift/internal/moveset"
	"hkxshift/internal/preflight"
	"hkxshift/internal/services"
	"hkxshift/internal/services/hkanno"
)

const phasePreflight = "preflight"

// Preflight checks the request in a fixed order and returns the plan. Any
// failure is returned before the results root or audit log is touched.
//
//  1. source is an existing directory
//  2. annotation tool resolves
//  3. scale text parses
//  4. scale is not 1.0
//  5. scale is within the hard bounds
//  6. discovery finds assets
//  7. advisories are confirmed
func (r *Runner) Preflight(ctx context.Context, req Request) (Plan, error) {
	source, err := filepath.Abs(req.Source)
	if err != nil || req.Source == "" {
		return Plan{}, precondition("source", "resolve source path", moveset.ErrInvalidSource)
	}
	if info, statErr := os.Stat(source); statErr != nil || !info.IsDir() {
		return Plan{}, precondition("source", source, moveset.ErrInvalidSource)
	}

	toolPath, err := r.resolveTool(r.cfg.ToolBinary())
	if err != nil {
		return Plan{}, precondition("tool", r.cfg.ToolBinary(), errors.Join(hkanno.ErrToolMissing, err))
	}

	scale, err := preflight.ParseScale(req.ScaleText)
	if err != nil {
		return Plan{}, precondition("scale", "parse", err)
	}
	if err := preflight.CheckScale(scale, r.cfg.Scale); err != nil {
		return Plan{}, precondition("scale", "bounds", err)
	}

	discovery, err := moveset.Discover(source, r.classifier)
	if err != nil {
		return Plan{}, precondition("discovery", source, err)
	}

	job := Job{
		Source:    source,
		Base:      filepath.Base(filepath.Clean(source)),
		Scale:     scale,
		ScaleText: preflight.FormatScale(scale),
		Options:   req.Options,
	}
	plan := Plan{
		Job:      job,
		Mode:     discovery.Mode,
		Layout:   Layout{Root: r.cfg.Paths.ResultsDir, Base: job.Base},
		ToolPath: toolPath,
	}
	for _, ms := range discovery.Movesets {
		plan.Movesets = append(plan.Movesets, MovesetPlan{Moveset: ms, Report: r.classifier.Analyze(ms.Files)})
	}

	plan.Advisories = preflight.ScaleAdvisories(scale, r.cfg.Scale)
	if adv, ok := r.sameMultiplierAdvisory(ctx, source, scale); ok {
		plan.Advisories = append(plan.Advisories, adv)
	}
	if len(plan.Advisories) > 0 && !req.Confirmed {
		return plan, precondition("advisory", "confirm", &AdvisoryError{Advisories: plan.Advisories})
	}
	return plan, nil
}

// Inspect discovers and classifies source without checking the tool or scale.
func (r *Runner) Inspect(source string) (moveset.Mode, []MovesetPlan, error) {
	discovery, err := moveset.Discover(source, r.classifier)
	if err != nil {
		return "", nil, err
	}
	plans := make([]MovesetPlan, 0, len(discovery.Movesets))
	for _, ms := range discovery.Movesets {
		plans = append(plans, MovesetPlan{Moveset: ms, Report: r.classifier.Analyze(ms.Files)})
	}
	return discovery.Mode, plans, nil
}

func (r *Runner) sameMultiplierAdvisory(ctx context.Context, source string, scale float64) (preflight.Advisory, bool) {
	if r.history == nil {
		return preflight.Advisory{}, false
	}
	last, err := r.history.LastRun(ctx)
	if err != nil {
		logging.WarnWithContext(r.logger, "run history unavailable", "history_read_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "same-multiplier notice skipped"),
		)
		return preflight.Advisory{}, false
	}
	if last == nil {
		return preflight.Advisory{}, false
	}
	return preflight.SameMultiplierAdvisory(&preflight.PreviousRun{Source: last.Source, Scale: last.Scale}, source, scale)
}

func precondition(op, msg string, err error) error {
	return services.Wrap(services.ErrPrecondition, phasePreflight, op, msg, err)
}

package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hkxshift/internal/annotation"
	"hkxshift/internal/classify"
	"hkxshift/internal/fileutil"
	"hkxshift/internal/logging"
	"hkxshift/internal/services"
)

// processMoveset copies preserved and support files, then runs the extract,
// rescale and merge phases over the processable files. Phases never
// interleave. It returns false when a stop was requested.
func (r *Runner) processMoveset(ctx context.Context, rc *RunContext, mp MovesetPlan) bool {
	ms := mp.Moveset
	report := mp.Report
	ctx = services.WithMoveset(ctx, ms.Name)
	logger := rc.Logger.With(logging.String(logging.FieldMoveset, ms.Name))

	rc.Summary.AssetFiles += report.Assets()
	countSupport(rc.Summary, report)
	r.logPatchReport(logger, report)

	logger.Info("processing moveset",
		logging.String(logging.FieldEventType, "moveset_started"),
		logging.Int("processable", len(report.Processable)),
		logging.Int("preserved", report.Preserved()),
		logging.Int("support", len(report.Support)),
	)

	// Preserved assets and sidecars go straight to the merged output.
	copies := make([]*unit, 0, report.Preserved()+len(report.Support))
	for _, name := range report.Scar {
		copies = append(copies, rc.track(newUnit(ms.Name, name, classify.ClassPreserveScar)))
	}
	for _, name := range report.Cpr {
		copies = append(copies, rc.track(newUnit(ms.Name, name, classify.ClassPreserveCpr)))
	}
	for _, name := range report.Support {
		copies = append(copies, rc.track(newUnit(ms.Name, name, classify.ClassSupport)))
	}
	for _, u := range copies {
		if stopRequested(ctx, rc.Token) {
			return false
		}
		r.copyThrough(rc, logger, ms.Path, u)
	}

	units := make([]*unit, 0, len(report.Processable))
	for _, name := range report.Processable {
		units = append(units, rc.track(newUnit(ms.Name, name, classify.ClassProcessable)))
	}

	phases := []struct {
		name string
		from FileState
		run  func(context.Context, *RunContext, string, *unit) error
		to   FileState
	}{
		{name: PhaseExtract, from: StatePending, run: r.extract, to: StateExtracted},
		{name: PhaseRescale, from: StateExtracted, run: r.rescale, to: StateRescaled},
		{name: PhaseMerge, from: StateRescaled, run: r.merge, to: StateMerged},
	}
	for _, phase := range phases {
		phaseCtx := services.WithPhase(ctx, phase.name)
		phaseLogger := logger.With(logging.String(logging.FieldPhase, phase.name))
		phaseLogger.Debug("phase started",
			logging.String(logging.FieldEventType, "phase_started"),
			logging.Int("files", countState(units, phase.from)),
		)
		credit := 0
		for _, u := range units {
			if u.state != phase.from {
				if u.state == StateFailed {
					credit++
				}
				continue
			}
			if stopRequested(ctx, rc.Token) {
				return false
			}
			if err := phase.run(phaseCtx, rc, ms.Path, u); err != nil {
				u.fail(phase.name, err)
				rc.Summary.Failed++
				logging.WarnWithContext(phaseLogger, phase.name+" failed", "file_failed",
					append(fileAttrs(u),
						logging.Error(err),
						logging.String("category", services.Category(err)),
						logging.String(logging.FieldImpact, "file left out of merged output"),
					)...,
				)
			} else {
				u.advance(phase.to)
				switch phase.to {
				case StateExtracted:
					rc.Summary.Extracted++
				case StateRescaled:
					rc.Summary.Rescaled++
				case StateMerged:
					rc.Summary.Merged++
				}
			}
			rc.progress.step(phase.name, ms.Name, u.name)
		}
		rc.progress.credit(credit, phase.name, ms.Name)
	}

	logger.Info("moveset finished",
		logging.String(logging.FieldEventType, "moveset_finished"),
		logging.Int("merged", countState(units, StateMerged)),
		logging.Int("failed", countState(units, StateFailed)),
	)
	return true
}

// copyThrough copies a preserved asset or support file unchanged.
func (r *Runner) copyThrough(rc *RunContext, logger *slog.Logger, dir string, u *unit) {
	dst := rc.Layout.mergedPath(u.moveset, u.name)
	if _, err := fileutil.CopyFile(filepath.Join(dir, u.name), dst); err != nil {
		wrapped := services.Wrap(services.ErrIO, PhaseCopy, "copy", u.name, err)
		u.fail(PhaseCopy, wrapped)
		rc.Summary.Failed++
		logging.WarnWithContext(logger, "copy failed", "file_failed",
			append(fileAttrs(u),
				logging.String(logging.FieldPhase, PhaseCopy),
				logging.Error(wrapped),
				logging.String(logging.FieldImpact, "file missing from merged output"),
			)...,
		)
		return
	}
	u.advance(StateCopied)
	switch u.class {
	case classify.ClassPreserveScar:
		rc.Summary.ScarSkipped++
	case classify.ClassPreserveCpr:
		rc.Summary.CprSkipped++
	case classify.ClassSupport:
		rc.Summary.SupportCopied++
	}
	logger.Debug("copied unchanged", logging.Args(fileAttrs(u)...)...)
}

// extract copies the source asset into its converted working directory and
// dumps the annotation track beside it.
func (r *Runner) extract(ctx context.Context, rc *RunContext, dir string, u *unit) error {
	assetPath, annotationPath := rc.Layout.convertedPaths(u.moveset, u.name)
	if _, err := fileutil.CopyFile(filepath.Join(dir, u.name), assetPath); err != nil {
		return services.Wrap(services.ErrIO, PhaseExtract, "stage asset", u.name, err)
	}
	if _, err := rc.Tool.Extract(context.WithoutCancel(ctx), assetPath, annotationPath); err != nil {
		return err
	}
	if rc.Marker != "" {
		if data, err := os.ReadFile(annotationPath); err == nil && annotation.ContainsMarker(string(data), rc.Marker) {
			logging.WithContext(ctx, rc.Logger).Debug("protected annotation detected",
				logging.String(logging.FieldFile, u.name),
				logging.String("marker", rc.Marker),
			)
		}
	}
	return nil
}

// rescale rewrites the extracted annotation into the rescaled tree and
// stages a fresh copy of the asset there for merging.
func (r *Runner) rescale(ctx context.Context, rc *RunContext, _ string, u *unit) error {
	srcAsset, srcAnnotation := rc.Layout.convertedPaths(u.moveset, u.name)
	dstAsset, dstAnnotation := rc.Layout.rescaledPaths(u.moveset, u.name)

	data, err := os.ReadFile(srcAnnotation)
	if err != nil {
		return services.Wrap(services.ErrIO, PhaseRescale, "read annotation", u.name, err)
	}
	text, stats := annotation.Rescale(string(data), rc.Job.Scale, rc.Marker)
	if err := os.MkdirAll(filepath.Dir(dstAnnotation), 0o755); err != nil {
		return services.Wrap(services.ErrIO, PhaseRescale, "create directory", u.name, err)
	}
	if err := fileutil.WriteFileAtomic(dstAnnotation, []byte(text), 0o644); err != nil {
		return services.Wrap(services.ErrIO, PhaseRescale, "write annotation", u.name, err)
	}
	if _, err := fileutil.CopyFile(srcAsset, dstAsset); err != nil {
		return services.Wrap(services.ErrIO, PhaseRescale, "stage asset", u.name, err)
	}
	rc.Summary.ProtectedLinesPreserved += stats.Protected
	logging.WithContext(ctx, rc.Logger).Debug("annotation rescaled",
		logging.String(logging.FieldFile, u.name),
		logging.Int("lines", stats.Lines),
		logging.Int("timed", stats.Timed),
		logging.Int("protected", stats.Protected),
		logging.Int("opaque", stats.Opaque),
	)
	return nil
}

// merge writes the rescaled annotation into the staged asset and publishes
// the result to the merged tree.
func (r *Runner) merge(ctx context.Context, rc *RunContext, _ string, u *unit) error {
	assetPath, annotationPath := rc.Layout.rescaledPaths(u.moveset, u.name)
	if _, err := rc.Tool.Merge(context.WithoutCancel(ctx), assetPath, annotationPath); err != nil {
		return err
	}
	if _, err := fileutil.CopyFile(assetPath, rc.Layout.mergedPath(u.moveset, u.name)); err != nil {
		return services.Wrap(services.ErrIO, PhaseMerge, "publish", u.name, err)
	}
	return nil
}

func (r *Runner) logPatchReport(logger *slog.Logger, report classify.Report) {
	if report.ScarPatched() {
		logger.Info("SCAR patch detected",
			logging.String(logging.FieldEventType, "scar_patch_detected"),
			logging.Int("files", len(report.Scar)),
			logging.String("names", strings.Join(report.Scar, ", ")),
		)
	}
	if report.CprPatched() {
		equip, unequip := r.classifier.SplitCpr(report.Cpr)
		logger.Info("CPR patch detected",
			logging.String(logging.FieldEventType, "cpr_patch_detected"),
			logging.Int("files", len(report.Cpr)),
			logging.Int("equip", len(equip)),
			logging.Int("unequip", len(unequip)),
			logging.String("names", strings.Join(report.Cpr, ", ")),
		)
	}
	logger.Debug("file analysis",
		logging.Int("total", report.Assets()+len(report.Support)+len(report.Ignored)),
		logging.Int("processable", len(report.Processable)),
		logging.Int("preserved", report.Preserved()),
		logging.Int("support", len(report.Support)),
		logging.Int("ignored", len(report.Ignored)),
	)
}

func countState(units []*unit, state FileState) int {
	n := 0
	for _, u := range units {
		if u.state == state {
			n++
		}
	}
	return n
}

func lowerExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

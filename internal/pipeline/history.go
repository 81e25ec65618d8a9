package pipeline

import (
	"context"
	"log/slog"

	"hkxshift/internal/history"
	"hkxshift/internal/logging"
)

// record stores a finished run in the ledger. Failures are logged and never
// change the run outcome.
func (r *Runner) record(ctx context.Context, logger *slog.Logger, plan Plan, result Result) {
	if r.history == nil {
		return
	}
	run, files := historyEntry(plan, result)
	if err := r.history.RecordRun(context.WithoutCancel(ctx), run, files); err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from hkxshift history"),
		)
	}
}

func historyEntry(plan Plan, result Result) (history.Run, []history.FileOutcome) {
	s := result.Summary
	run := history.Run{
		ID:        result.RunID,
		Source:    plan.Job.Source,
		Base:      plan.Job.Base,
		Scale:     plan.Job.Scale,
		ScaleText: plan.Job.ScaleText,
		Status:    string(result.Status),
		Reason:    result.Reason,
		OutputDir: result.OutputDir,
		StartedAt: result.Started,
		EndedAt:   result.Started.Add(result.Duration),
		Duration:  result.Duration,
		Counts: history.Counts{
			Movesets:           s.Movesets,
			Extracted:          s.Extracted,
			Rescaled:           s.Rescaled,
			Merged:             s.Merged,
			Failed:             s.Failed,
			ScarSkipped:        s.ScarSkipped,
			CprSkipped:         s.CprSkipped,
			ProtectedPreserved: s.ProtectedLinesPreserved,
			BackedUp:           s.BackedUp,
			SupportCopied:      s.SupportCopied,
		},
	}
	files := make([]history.FileOutcome, 0, len(result.Files))
	for _, f := range result.Files {
		outcome := history.FileOutcome{
			Moveset: f.Moveset,
			File:    f.File,
			Class:   f.Class.String(),
			State:   string(f.State),
			Phase:   f.Phase,
		}
		if f.Err != nil {
			outcome.Error = f.Err.Error()
		}
		files = append(files, outcome)
	}
	return run, files
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hkxshift/internal/audit"
	"hkxshift/internal/backup"
	"hkxshift/internal/classify"
	"hkxshift/internal/logging"
	"hkxshift/internal/services"
	"hkxshift/internal/staging"
)

// RunContext carries everything one run needs. It is built by Execute and
// passed down explicitly.
type RunContext struct {
	RunID    string
	Job      Job
	Layout   Layout
	Logger   *slog.Logger
	Token    *CancelToken
	Tool     Tool
	Marker   string
	Summary  *Summary
	progress *progressTracker
	units    []*unit
}

func (rc *RunContext) track(u *unit) *unit {
	rc.units = append(rc.units, u)
	return u
}

// Execute runs plan to completion, cancellation or abort. It never returns an
// error; the outcome is carried by Result.Status.
func (r *Runner) Execute(ctx context.Context, plan Plan, token *CancelToken, onProgress func(Progress)) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if token == nil {
		token = NewCancelToken()
	}
	started := r.now()
	result := Result{
		RunID:     uuid.NewString(),
		Started:   started,
		OutputDir: plan.Layout.Merged(),
		LogPath:   plan.Layout.Log(),
	}
	ctx = services.WithRunID(ctx, result.RunID)
	console := logging.NewComponentLogger(r.logger, "pipeline").With(logging.String(logging.FieldRunID, result.RunID))

	lock, err := acquireLock(plan.Layout.Root)
	if err != nil {
		return r.abort(ctx, console, result, services.Wrap(services.ErrIO, "setup", "lock", plan.Layout.Root, err))
	}
	defer func() {
		if err := lock.release(); err != nil {
			console.Warn("failed to release results lock", logging.Error(err))
		}
	}()

	auditLog, err := audit.Create(plan.Layout.Log(), audit.Header{
		Base:    plan.Job.Base,
		RunID:   result.RunID,
		Started: started,
		Tool:    plan.ToolPath,
		Source:  plan.Job.Source,
		Scale:   plan.Job.ScaleText,
		Options: optionFields(plan.Job.Options),
	})
	if err != nil {
		return r.abort(ctx, console, result, services.Wrap(services.ErrIO, "setup", "audit log", plan.Layout.Log(), err))
	}
	logger := logging.TeeLogger(r.logger, auditLog.Handler(slog.LevelDebug))
	logger = logging.NewComponentLogger(logger, "pipeline").With(logging.String(logging.FieldRunID, result.RunID))

	tool, err := r.newTool(plan.ToolPath, logger)
	if err != nil {
		result = r.abort(ctx, logger, result, services.Wrap(services.ErrExternalTool, "setup", "tool", plan.ToolPath, err))
		r.closeAudit(auditLog, logger, result)
		return result
	}

	summary := &Summary{Movesets: len(plan.Movesets)}
	rc := &RunContext{
		RunID:    result.RunID,
		Job:      plan.Job,
		Layout:   plan.Layout,
		Logger:   logger,
		Token:    token,
		Tool:     tool,
		Summary:  summary,
		progress: newProgressTracker(plan.Processable(), onProgress),
	}
	if plan.Job.Options.PreserveProtected {
		rc.Marker = r.cfg.Annotations.ProtectedMarker
	}

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("source", plan.Job.Source),
		logging.String("scale", plan.Job.ScaleText),
		logging.String("mode", string(plan.Mode)),
		logging.Int("movesets", len(plan.Movesets)),
		logging.Int("processable", plan.Processable()),
	)
	for _, adv := range plan.Advisories {
		logger.Warn("advisory confirmed",
			logging.String(logging.FieldEventType, "advisory_confirmed"),
			logging.String("advisory", adv.Kind),
			logging.String("detail", adv.Message),
		)
	}

	status := StatusCompleted
	backupRes, err := backup.Run(ctx, plan.Job.Source, plan.Layout.Backup(), backup.Options{
		Enabled: plan.Job.Options.MakeBackup,
		Verify:  plan.Job.Options.VerifyBackup,
		Exclude: []string{plan.Layout.Root},
	}, logger)
	summary.BackedUp = backupRes.Files
	summary.BackupBytes = backupRes.Bytes
	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		status = StatusCancelled
	case err != nil:
		result.Summary = *summary
		result = r.abort(ctx, logger, result, services.Wrap(services.ErrIO, "backup", "snapshot", plan.Job.Source, err))
		r.closeAudit(auditLog, logger, result)
		r.record(ctx, logger, plan, result)
		return result
	case token.Cancelled():
		status = StatusCancelled
	}

	if status == StatusCompleted {
		for _, mp := range plan.Movesets {
			if stopRequested(ctx, token) {
				status = StatusCancelled
				break
			}
			if !r.processMoveset(ctx, rc, mp) {
				status = StatusCancelled
				break
			}
		}
	}
	if status == StatusCancelled {
		rc.progress.freeze()
		logger.Warn("run cancelled",
			logging.String(logging.FieldEventType, "run_cancelled"),
			logging.String(logging.FieldImpact, "remaining files were not processed"),
			logging.String(logging.FieldErrorHint, "rerun to process the full source"),
		)
	}

	if plan.Job.Options.DeleteIntermediates {
		staging.CleanIntermediates(plan.Layout.Intermediates(), logger)
	}

	result.Status = status
	result.Duration = r.now().Sub(started)
	summary.Elapsed = result.Duration
	result.Summary = *summary
	for _, u := range rc.units {
		result.Files = append(result.Files, u.result())
	}

	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.String("status", string(status)),
		logging.Int("merged", summary.Merged),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", result.Duration.Round(time.Millisecond)),
	)
	r.closeAudit(auditLog, logger, result)
	r.record(ctx, logger, plan, result)
	return result
}

func (r *Runner) abort(ctx context.Context, logger *slog.Logger, result Result, err error) Result {
	result.Status = StatusAborted
	result.Err = err
	result.Reason = err.Error()
	result.Duration = r.now().Sub(result.Started)
	logging.ErrorWithContext(logging.WithContext(ctx, logger), "run aborted", "run_aborted",
		logging.Error(err),
		logging.String("category", services.Category(err)),
	)
	return result
}

func (r *Runner) closeAudit(log *audit.Log, logger *slog.Logger, result Result) {
	err := log.Close(audit.Trailer{
		Ended:   result.Started.Add(result.Duration),
		Status:  string(result.Status),
		Reason:  result.Reason,
		Elapsed: result.Duration,
		Counts:  result.Summary.Fields(),
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to close audit log", "audit_close_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "audit trailer may be missing"),
		)
	}
}

func optionFields(opts Options) []audit.Field {
	onOff := func(v bool) string {
		if v {
			return "enabled"
		}
		return "disabled"
	}
	return []audit.Field{
		{Label: "Backup", Value: onOff(opts.MakeBackup)},
		{Label: "Verify Backup", Value: onOff(opts.VerifyBackup)},
		{Label: "Delete Intermediates", Value: onOff(opts.DeleteIntermediates)},
		{Label: "Preserve Protected Annotations", Value: onOff(opts.PreserveProtected)},
	}
}

func fileAttrs(u *unit) []logging.Attr {
	return []logging.Attr{
		logging.String(logging.FieldFile, u.name),
		logging.String("class", u.class.String()),
	}
}

func countSupport(summary *Summary, report classify.Report) {
	for _, name := range report.Support {
		switch lowerExt(name) {
		case ".txt":
			summary.TxtFiles++
		case ".json":
			summary.JSONFiles++
		}
	}
}

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = "id, source_path, base_name, scale, scale_text, status, reason, output_dir, started_at, ended_at, duration_ms, movesets, extracted, rescaled, merged, failed, scar_skipped, cpr_skipped, protected_preserved, backed_up, support_copied"

// RecordRun stores a run and its file outcomes in one transaction. Recording
// the same run id twice replaces the earlier rows.
func (s *Store) RecordRun(ctx context.Context, run Run, files []FileOutcome) error {
	ctx = ensureContext(ctx)
	if run.ID == "" {
		return errors.New("record run: id is required")
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin run tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM run_files WHERE run_id = ?", run.ID); err != nil {
			return fmt.Errorf("replace run files: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", run.ID); err != nil {
			return fmt.Errorf("replace run: %w", err)
		}
		c := run.Counts
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO runs ("+runColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			run.ID,
			run.Source,
			run.Base,
			run.Scale,
			run.ScaleText,
			run.Status,
			nullableString(run.Reason),
			nullableString(run.OutputDir),
			formatTime(run.StartedAt),
			formatTime(run.EndedAt),
			run.Duration.Milliseconds(),
			c.Movesets,
			c.Extracted,
			c.Rescaled,
			c.Merged,
			c.Failed,
			c.ScarSkipped,
			c.CprSkipped,
			c.ProtectedPreserved,
			c.BackedUp,
			c.SupportCopied,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			"INSERT OR REPLACE INTO run_files (run_id, moveset, file_name, class, state, phase, error_message) VALUES (?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("prepare file insert: %w", err)
		}
		defer stmt.Close()
		for _, f := range files {
			if _, err := stmt.ExecContext(ctx, run.ID, f.Moveset, f.File, f.Class, f.State,
				nullableString(f.Phase), nullableString(f.Error)); err != nil {
				return fmt.Errorf("insert file %s/%s: %w", f.Moveset, f.File, err)
			}
		}
		return tx.Commit()
	})
}

// LastRun returns the most recently started run, or nil when none exist.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Files returns the recorded file outcomes for a run ordered by moveset and file.
func (s *Store) Files(ctx context.Context, runID string) ([]FileOutcome, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT moveset, file_name, class, state, phase, error_message FROM run_files WHERE run_id = ? ORDER BY moveset, file_name",
		runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var files []FileOutcome
	for rows.Next() {
		var (
			f      FileOutcome
			phase  sql.NullString
			errMsg sql.NullString
		)
		if err := rows.Scan(&f.Moveset, &f.File, &f.Class, &f.State, &phase, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		f.Phase = phase.String
		f.Error = errMsg.String
		files = append(files, f)
	}
	return files, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		reason     sql.NullString
		outputDir  sql.NullString
		startedRaw string
		endedRaw   string
		durationMS int64
		c          Counts
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Source,
		&run.Base,
		&run.Scale,
		&run.ScaleText,
		&run.Status,
		&reason,
		&outputDir,
		&startedRaw,
		&endedRaw,
		&durationMS,
		&c.Movesets,
		&c.Extracted,
		&c.Rescaled,
		&c.Merged,
		&c.Failed,
		&c.ScarSkipped,
		&c.CprSkipped,
		&c.ProtectedPreserved,
		&c.BackedUp,
		&c.SupportCopied,
	); err != nil {
		return Run{}, err
	}
	run.Reason = reason.String
	run.OutputDir = outputDir.String
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Counts = c
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if ended, err := parseTimeString(endedRaw); err == nil {
		run.EndedAt = ended
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		value = time.Now()
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

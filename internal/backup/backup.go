package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"hkxshift/internal/fileutil"
	"hkxshift/internal/logging"
)

// Options controls a backup pass. Exclude lists absolute paths skipped
// during the walk; the destination is always excluded.
type Options struct {
	Enabled bool
	Verify  bool
	Exclude []string
}

// Result summarizes a backup pass.
type Result struct {
	Skipped  bool
	Files    int
	Bytes    int64
	Failed   int
	Duration time.Duration
}

// Run mirrors src into dst before any source file is modified. Directories
// are recreated and every regular file is copied with its mode and
// modification time. A failed file is logged and skipped; the pass continues.
// Cancellation of ctx stops the walk and returns ctx.Err with partial counts.
func Run(ctx context.Context, src, dst string, opts Options, logger *slog.Logger) (Result, error) {
	logger = logging.NewComponentLogger(logger, "backup")
	if !opts.Enabled {
		logger.Info("backup skipped", logging.String(logging.FieldEventType, "backup_skipped"))
		return Result{Skipped: true}, nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return Result{}, fmt.Errorf("backup source: %w", err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("backup source %s: not a directory", src)
	}
	if filepath.Clean(dst) == filepath.Clean(src) {
		return Result{}, fmt.Errorf("backup destination %s equals source", dst)
	}
	excluded := map[string]struct{}{filepath.Clean(dst): {}}
	for _, path := range opts.Exclude {
		excluded[filepath.Clean(path)] = struct{}{}
	}

	copyFn := fileutil.CopyFile
	if opts.Verify {
		copyFn = fileutil.CopyFileVerified
	}

	started := time.Now()
	logger.Info("backup started",
		logging.String(logging.FieldEventType, "backup_started"),
		logging.String("source", src),
		logging.String("destination", dst),
		logging.Bool("verify", opts.Verify),
	)

	var result Result
	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return relErr
		}
		target := filepath.Join(dst, rel)
		if err != nil {
			result.Failed++
			logging.WarnWithContext(logger, "backup entry unreadable", "backup_entry_failed",
				logging.String("path", rel),
				logging.Error(err),
				logging.String(logging.FieldImpact, "entry missing from backup"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if _, skip := excluded[filepath.Clean(path)]; skip {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if mkErr := os.MkdirAll(target, 0o755); mkErr != nil {
				result.Failed++
				logging.WarnWithContext(logger, "backup directory not created", "backup_entry_failed",
					logging.String("path", rel),
					logging.Error(mkErr),
					logging.String(logging.FieldImpact, "directory contents missing from backup"),
				)
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			logger.Debug("backup skipped non-regular entry", logging.String("path", rel))
			return nil
		}
		n, copyErr := copyFn(path, target)
		if copyErr != nil {
			result.Failed++
			logging.WarnWithContext(logger, "backup copy failed", "backup_entry_failed",
				logging.String("path", rel),
				logging.Error(copyErr),
				logging.String(logging.FieldImpact, "file missing from backup"),
			)
			return nil
		}
		result.Files++
		result.Bytes += n
		logger.Debug("backed up file", logging.String("path", rel), logging.Int64("bytes", n))
		return nil
	})
	result.Duration = time.Since(started)

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return result, walkErr
		}
		return result, fmt.Errorf("backup walk: %w", walkErr)
	}

	logger.Info("backup completed",
		logging.String(logging.FieldEventType, "backup_completed"),
		logging.Int("files", result.Files),
		logging.String("size", humanize.IBytes(uint64(result.Bytes))),
		logging.Int("failed", result.Failed),
		logging.Duration("duration", result.Duration.Round(time.Millisecond)),
	)
	return result, nil
}

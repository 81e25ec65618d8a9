package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"hkxshift/internal/logging"
	"hkxshift/internal/pipeline"
)

// progressReporter draws a bar on a terminal and samples progress into the
// log otherwise.
type progressReporter struct {
	bar     *progressbar.ProgressBar
	out     io.Writer
	sampler *logging.ProgressSampler
	logger  *slog.Logger
}

func newProgressReporter(out io.Writer, processable int, logger *slog.Logger, interactive bool) *progressReporter {
	if interactive && processable > 0 {
		bar := progressbar.NewOptions(processable*3,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("starting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
		)
		return &progressReporter{bar: bar, out: out}
	}
	return &progressReporter{sampler: logging.NewProgressSampler(10), logger: logger}
}

func (r *progressReporter) update(p pipeline.Progress) {
	if r.bar != nil {
		r.bar.Describe(progressLabel(p))
		_ = r.bar.Set(p.Completed)
		return
	}
	if r.logger == nil || !r.sampler.ShouldLog(p.Percent, p.Phase) {
		return
	}
	r.logger.Info("progress",
		logging.String(logging.FieldEventType, "progress"),
		logging.String(logging.FieldPhase, p.Phase),
		logging.String(logging.FieldMoveset, p.Moveset),
		logging.Int("completed", p.Completed),
		logging.Int("total", p.Total),
		logging.String("percent", fmt.Sprintf("%.0f%%", p.Percent)),
	)
}

// finish completes the bar, or leaves it where it stopped for a partial run.
func (r *progressReporter) finish(completed bool) {
	if r.bar == nil {
		return
	}
	if completed {
		_ = r.bar.Finish()
		return
	}
	_ = r.bar.Exit()
	fmt.Fprintln(r.out)
}

func progressLabel(p pipeline.Progress) string {
	if p.Moveset == "" {
		return p.Phase
	}
	return fmt.Sprintf("%-7s %s", p.Phase, p.Moveset)
}

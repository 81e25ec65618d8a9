package pipeline

import (
	"context"
	"log/slog"
	"time"

	"hkxshift/internal/classify"
	"hkxshift/internal/config"
	"hkxshift/internal/deps"
	"hkxshift/internal/history"
	"hkxshift/internal/logging"
	"hkxshift/internal/services/hkanno"
)

// HistoryStore records finished runs and recalls the previous one.
type HistoryStore interface {
	LastRun(ctx context.Context) (*history.Run, error)
	RecordRun(ctx context.Context, run history.Run, files []history.FileOutcome) error
}

// ToolFactory builds the tool client for a resolved binary and run logger.
type ToolFactory func(binary string, logger *slog.Logger) (Tool, error)

// Runner validates requests and executes runs. One Runner may execute many
// runs, one at a time per results root.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	classifier  *classify.Classifier
	history     HistoryStore
	resolveTool func(string) (string, error)
	newTool     ToolFactory
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the console logger. The audit sink is added per run.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHistory enables the run ledger.
func WithHistory(store HistoryStore) Option {
	return func(r *Runner) {
		r.history = store
	}
}

// WithToolResolver replaces binary lookup (primarily for tests).
func WithToolResolver(resolve func(string) (string, error)) Option {
	return func(r *Runner) {
		if resolve != nil {
			r.resolveTool = resolve
		}
	}
}

// WithToolFactory replaces the tool client constructor (primarily for tests).
func WithToolFactory(factory ToolFactory) Option {
	return func(r *Runner) {
		if factory != nil {
			r.newTool = factory
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// New constructs a Runner for cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	r := &Runner{
		cfg:         cfg,
		logger:      logging.NewNop(),
		classifier:  classify.New(classify.FromConfig(cfg.Classify)),
		resolveTool: deps.ResolveTool,
		now:         time.Now,
	}
	r.newTool = func(binary string, logger *slog.Logger) (Tool, error) {
		return hkanno.New(binary,
			hkanno.WithTimeout(cfg.ToolTimeout()),
			hkanno.WithNoiseMarkers(cfg.Tool.NoiseMarkers),
			hkanno.WithLogger(logger),
		)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classifier returns the classifier built from configuration.
func (r *Runner) Classifier() *classify.Classifier {
	return r.classifier
}

// Run validates req and executes it. Precondition failures return an error
// and an aborted result without creating any output.
func (r *Runner) Run(ctx context.Context, req Request, token *CancelToken, onProgress func(Progress)) (Result, error) {
	plan, err := r.Preflight(ctx, req)
	if err != nil {
		return Result{Status: StatusAborted, Reason: err.Error(), Err: err}, err
	}
	return r.Execute(ctx, plan, token, onProgress), nil
}

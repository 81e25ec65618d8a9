package pipeline

import (
	"context"
	"time"

	"hkxshift/internal/classify"
	"hkxshift/internal/config"
	"hkxshift/internal/moveset"
	"hkxshift/internal/preflight"
	"hkxshift/internal/services/hkanno"
)

// Tool is the external annotation tool contract.
type Tool interface {
	Extract(ctx context.Context, assetPath, annotationPath string) (hkanno.Output, error)
	Merge(ctx context.Context, assetPath, annotationPath string) (hkanno.Output, error)
}

// Options are the per-run switches.
type Options struct {
	MakeBackup          bool
	VerifyBackup        bool
	DeleteIntermediates bool
	PreserveProtected   bool
	OpenOutput          bool
}

// OptionsFromConfig returns the configured run defaults.
func OptionsFromConfig(cfg config.Options) Options {
	return Options{
		MakeBackup:          cfg.Backup,
		VerifyBackup:        cfg.VerifyBackup,
		DeleteIntermediates: cfg.DeleteIntermediates,
		PreserveProtected:   cfg.PreserveProtected,
		OpenOutput:          cfg.OpenOutput,
	}
}

// Request is the caller's description of a run before validation.
type Request struct {
	Source    string
	ScaleText string
	Options   Options
	// Confirmed acknowledges every advisory raised by preflight.
	Confirmed bool
}

// Job is a validated run description. It is not modified after Preflight.
type Job struct {
	Source    string
	Base      string
	Scale     float64
	ScaleText string
	Options   Options
}

// MovesetPlan pairs a moveset with its classification.
type MovesetPlan struct {
	Moveset moveset.Moveset
	Report  classify.Report
}

// Plan is the outcome of a successful preflight.
type Plan struct {
	Job        Job
	Mode       moveset.Mode
	Movesets   []MovesetPlan
	Layout     Layout
	ToolPath   string
	Advisories []preflight.Advisory
}

// Processable returns the number of files that go through the tool.
func (p Plan) Processable() int {
	total := 0
	for _, ms := range p.Movesets {
		total += len(ms.Report.Processable)
	}
	return total
}

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusAborted   Status = "aborted"
)

// Phase names used in logs, progress and file outcomes.
const (
	PhaseCopy    = "copy"
	PhaseExtract = "extract"
	PhaseRescale = "rescale"
	PhaseMerge   = "merge"
)

// Progress is emitted after every unit of work.
type Progress struct {
	Completed int
	Total     int
	Percent   float64
	Phase     string
	Moveset   string
	File      string
}

// Result is the terminal outcome of Execute.
type Result struct {
	RunID     string
	Status    Status
	Summary   Summary
	Reason    string
	Err       error
	Files     []FileResult
	Started   time.Time
	Duration  time.Duration
	OutputDir string
	LogPath   string
}

// FileResult is the final state of one moveset member.
type FileResult struct {
	Moveset string
	File    string
	Class   classify.Class
	State   FileState
	Phase   string
	Err     error
}

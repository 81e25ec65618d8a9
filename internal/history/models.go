package history

import "time"

// Run is one recorded pipeline invocation.
type Run struct {
	ID        string
	Source    string
	Base      string
	Scale     float64
	ScaleText string
	Status    string
	Reason    string
	OutputDir string
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	Counts    Counts
}

// Counts mirrors the run summary counters.
type Counts struct {
	Movesets           int
	Extracted          int
	Rescaled           int
	Merged             int
	Failed             int
	ScarSkipped        int
	CprSkipped         int
	ProtectedPreserved int
	BackedUp           int
	SupportCopied      int
}

// FileOutcome is the terminal state of one file in a run.
type FileOutcome struct {
	Moveset string
	File    string
	Class   string
	State   string
	Phase   string
	Error   string
}

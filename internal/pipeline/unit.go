package pipeline

import "hkxshift/internal/classify"

// FileState tracks a file through the pipeline.
type FileState string

const (
	StatePending   FileState = "pending"
	StateExtracted FileState = "extracted"
	StateRescaled  FileState = "rescaled"
	StateMerged    FileState = "merged"
	StateCopied    FileState = "copied"
	StateFailed    FileState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s FileState) Terminal() bool {
	return s == StateMerged || s == StateCopied || s == StateFailed
}

var transitions = map[FileState][]FileState{
	StatePending:   {StateExtracted, StateCopied, StateFailed},
	StateExtracted: {StateRescaled, StateFailed},
	StateRescaled:  {StateMerged, StateFailed},
}

// unit is the per-(moveset, file) record owned by the pipeline goroutine.
type unit struct {
	moveset string
	name    string
	class   classify.Class
	state   FileState
	phase   string
	err     error
}

func newUnit(moveset, name string, class classify.Class) *unit {
	return &unit{moveset: moveset, name: name, class: class, state: StatePending}
}

// advance moves the unit to next. Invalid transitions are ignored and
// reported as false.
func (u *unit) advance(next FileState) bool {
	for _, allowed := range transitions[u.state] {
		if allowed == next {
			u.state = next
			return true
		}
	}
	return false
}

func (u *unit) fail(phase string, err error) {
	if u.advance(StateFailed) {
		u.phase = phase
		u.err = err
	}
}

func (u *unit) result() FileResult {
	return FileResult{
		Moveset: u.moveset,
		File:    u.name,
		Class:   u.class,
		State:   u.state,
		Phase:   u.phase,
		Err:     u.err,
	}
}

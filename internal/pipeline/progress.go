package pipeline

// stepsPerFile is one step each for extract, rescale and merge.
const stepsPerFile = 3

// progressTracker counts completed steps and reports after each change. The
// count never decreases and stops moving once frozen.
type progressTracker struct {
	completed int
	total     int
	frozen    bool
	emit      func(Progress)
}

func newProgressTracker(processable int, emit func(Progress)) *progressTracker {
	return &progressTracker{total: stepsPerFile * processable, emit: emit}
}

// step records one finished unit of work.
func (p *progressTracker) step(phase, moveset, file string) {
	p.add(1, phase, moveset, file)
}

// credit records steps a failed file can no longer perform.
func (p *progressTracker) credit(n int, phase, moveset string) {
	if n > 0 {
		p.add(n, phase, moveset, "")
	}
}

func (p *progressTracker) add(n int, phase, moveset, file string) {
	if p.frozen {
		return
	}
	p.completed += n
	if p.completed > p.total {
		p.completed = p.total
	}
	if p.emit != nil {
		p.emit(p.snapshot(phase, moveset, file))
	}
}

func (p *progressTracker) freeze() {
	p.frozen = true
}

func (p *progressTracker) snapshot(phase, moveset, file string) Progress {
	percent := 100.0
	if p.total > 0 {
		percent = float64(p.completed) / float64(p.total) * 100
	}
	return Progress{
		Completed: p.completed,
		Total:     p.total,
		Percent:   percent,
		Phase:     phase,
		Moveset:   moveset,
		File:      file,
	}
}

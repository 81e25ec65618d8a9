package audit

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"hkxshift/internal/logging"
)

// HeaderTimeLayout formats the start and completion stamps.
const HeaderTimeLayout = "2006-01-02 15:04:05"

// EndMarker terminates every closed audit log.
const EndMarker = "=== End of Log ==="

// FileName returns the audit log name for a source base name.
func FileName(base string) string {
	return base + "_log.txt"
}

// Header is written once when the log is created.
type Header struct {
	Base    string
	RunID   string
	Started time.Time
	Tool    string
	Version string
	Source  string
	Scale   string
	Options []Field
}

// Field is a labelled value rendered in the header or trailer.
type Field struct {
	Label string
	Value string
}

// Trailer is written once when the log is closed.
type Trailer struct {
	Ended   time.Time
	Status  string
	Reason  string
	Elapsed time.Duration
	Counts  []Field
}

// Log is a single-writer, append-only run log. Records are written straight
// to the file without buffering.
type Log struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	closed bool
}

// Create truncates path and writes the header block.
func Create(path string, header Header) (*Log, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("audit log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	log := &Log{file: file, path: path}
	if _, err := file.WriteString(renderHeader(header)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("write audit header: %w", err)
	}
	return log, nil
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Handler returns a slog handler that appends one line per record.
func (l *Log) Handler(level slog.Leveler) slog.Handler {
	return logging.NewLineHandler(l, level, logging.AuditTimestampLayout)
}

// Write implements io.Writer for the line handler. Writes after Close are
// discarded.
func (l *Log) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return len(p), nil
	}
	return l.file.Write(p)
}

// Close writes the trailer and closes the file. It is safe to call twice.
func (l *Log) Close(trailer Trailer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	_, writeErr := l.file.WriteString(renderTrailer(trailer))
	closeErr := l.file.Close()
	if writeErr != nil {
		return fmt.Errorf("write audit trailer: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close audit log: %w", closeErr)
	}
	return nil
}

func renderHeader(h Header) string {
	started := h.Started
	if started.IsZero() {
		started = time.Now()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "=== HKXShift Processing Log for %s ===\n", h.Base)
	fmt.Fprintf(&b, "Started: %s\n", started.Format(HeaderTimeLayout))
	if h.RunID != "" {
		fmt.Fprintf(&b, "Run ID: %s\n", h.RunID)
	}
	tool := h.Tool
	if h.Version != "" {
		tool = fmt.Sprintf("%s (%s)", tool, h.Version)
	}
	fmt.Fprintf(&b, "Tool: %s\n", tool)
	if h.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", h.Source)
	}
	if h.Scale != "" {
		fmt.Fprintf(&b, "Scale: %s\n", h.Scale)
	}
	for _, field := range h.Options {
		fmt.Fprintf(&b, "%s: %s\n", field.Label, field.Value)
	}
	b.WriteString("\n")
	return b.String()
}

func renderTrailer(t Trailer) string {
	ended := t.Ended
	if ended.IsZero() {
		ended = time.Now()
	}
	var b strings.Builder
	b.WriteString("\n")
	if t.Status != "" {
		fmt.Fprintf(&b, "Status: %s\n", t.Status)
	}
	if t.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", t.Reason)
	}
	for _, field := range t.Counts {
		fmt.Fprintf(&b, "%s: %s\n", field.Label, field.Value)
	}
	if t.Elapsed > 0 {
		fmt.Fprintf(&b, "Time Elapsed: %.2f seconds\n", t.Elapsed.Seconds())
	}
	fmt.Fprintf(&b, "Completed: %s\n", ended.Format(HeaderTimeLayout))
	b.WriteString(EndMarker + "\n")
	return b.String()
}

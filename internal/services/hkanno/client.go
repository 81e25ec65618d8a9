package hkanno

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"hkxshift/internal/logging"
	"hkxshift/internal/services"
)

var (
	// ErrToolMissing indicates the annotation tool binary cannot be found.
	ErrToolMissing = errors.New("annotation tool not found")
	// ErrNoAnnotation indicates extract exited cleanly without writing its output file.
	ErrNoAnnotation = errors.New("annotation file not produced")
)

// Operation names used in logs and errors.
const (
	OpExtract = "extract"
	OpMerge   = "merge"
)

// ToolError reports a failed tool invocation. It matches services.ErrExternalTool.
type ToolError struct {
	Op       string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	b.WriteString("hkanno ")
	b.WriteString(e.Op)
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(firstLine(stderr))
	}
	return b.String()
}

func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrExternalTool}
	}
	return []error{services.ErrExternalTool, e.Err}
}

// Output carries the tool's merged stdout and stderr with noise lines removed.
type Output struct {
	Lines    []string
	ExitCode int
	Duration time.Duration
}

// Invocation is the raw result of running the tool.
type Invocation struct {
	Output   []string
	ExitCode int
}

// Executor abstracts command execution for testability. A non-zero exit is
// reported through Invocation.ExitCode with a nil error; errors mean the
// process could not run to completion.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (Invocation, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout bounds each invocation. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithNoiseMarkers replaces the markers whose lines are dropped from Output.
func WithNoiseMarkers(markers []string) Option {
	return func(c *Client) {
		c.noise = append([]string(nil), markers...)
	}
}

// WithLogger sets the logger receiving invocation records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps the hkanno command line.
type Client struct {
	binary  string
	timeout time.Duration
	noise   []string
	exec    Executor
	logger  *slog.Logger
}

// DefaultNoiseMarker is filtered from tool output unless overridden.
const DefaultNoiseMarker = "hctFilterTexture.dll"

// New constructs a client for an already resolved binary path.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, fmt.Errorf("%w: binary required", ErrToolMissing)
	}
	client := &Client{
		binary: binary,
		noise:  []string{DefaultNoiseMarker},
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "hkanno")
	return client, nil
}

// Binary returns the executable the client runs.
func (c *Client) Binary() string {
	return c.binary
}

// WithLogger returns a copy of the client logging to logger.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	clone := *c
	clone.logger = logging.NewComponentLogger(logger, "hkanno")
	return &clone
}

// Extract dumps the annotation track of assetPath to annotationPath.
func (c *Client) Extract(ctx context.Context, assetPath, annotationPath string) (Output, error) {
	_ = os.Remove(annotationPath)
	out, err := c.invoke(ctx, OpExtract, []string{"dump", "-o", annotationPath, assetPath})
	if err != nil {
		return out, err
	}
	info, statErr := os.Stat(annotationPath)
	if statErr != nil || !info.Mode().IsRegular() {
		return out, &ToolError{Op: OpExtract, Err: ErrNoAnnotation, Stderr: strings.Join(out.Lines, "\n")}
	}
	return out, nil
}

// Merge writes annotationPath back into assetPath, mutating the asset in place.
func (c *Client) Merge(ctx context.Context, assetPath, annotationPath string) (Output, error) {
	return c.invoke(ctx, OpMerge, []string{"update", "-i", annotationPath, assetPath})
}

func (c *Client) invoke(ctx context.Context, op string, args []string) (Output, error) {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	inv, err := c.exec.Run(runCtx, c.binary, args)
	out := Output{
		Lines:    filterNoise(inv.Output, c.noise),
		ExitCode: inv.ExitCode,
		Duration: time.Since(started),
	}

	logger := logging.WithContext(ctx, c.logger)
	for _, line := range out.Lines {
		logger.Debug("hkanno output", logging.String("op", op), logging.String("line", line))
	}

	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrToolMissing, c.binary)
		}
		if out.ExitCode == 0 {
			out.ExitCode = -1
		}
		logger.Debug("hkanno invocation",
			logging.String("op", op),
			logging.Any("args", args),
			logging.Int("exit_code", out.ExitCode),
			logging.Duration("duration", out.Duration),
			logging.Error(err),
		)
		return out, &ToolError{Op: op, ExitCode: out.ExitCode, Stderr: strings.Join(out.Lines, "\n"), Err: err}
	}

	logger.Debug("hkanno invocation",
		logging.String("op", op),
		logging.Any("args", args),
		logging.Int("exit_code", out.ExitCode),
		logging.Duration("duration", out.Duration),
	)
	if out.ExitCode != 0 {
		return out, &ToolError{Op: op, ExitCode: out.ExitCode, Stderr: strings.Join(out.Lines, "\n")}
	}
	return out, nil
}

func filterNoise(lines, markers []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || containsAny(line, markers) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

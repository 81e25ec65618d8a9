package hkanno

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

type commandExecutor struct{}

// Run executes the binary with stdout and stderr merged into one stream, in
// the order the tool wrote them.
func (commandExecutor) Run(ctx context.Context, binary string, args []string) (Invocation, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	inv := Invocation{Output: splitLines(buf.String())}
	if err == nil {
		return inv, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		inv.ExitCode = exitErr.ExitCode()
		return inv, nil
	}
	if ctx.Err() != nil {
		return inv, ctx.Err()
	}
	return inv, err
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\r\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

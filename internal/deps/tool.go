package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNotFound reports that a tool could not be resolved.
var ErrNotFound = errors.New("binary not found")

// executablePath is replaced in tests.
var executablePath = os.Executable

// ResolveTool locates command. Paths containing a separator are checked
// directly. Bare names are looked up next to the running executable, then in
// the working directory, then on PATH, which matches where users drop the
// annotation tool beside a portable install.
func ResolveTool(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("%w: empty command", ErrNotFound)
	}

	if strings.ContainsRune(command, os.PathSeparator) || strings.ContainsRune(command, '/') {
		abs, err := filepath.Abs(command)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrNotFound, command, err)
		}
		if info, err := os.Stat(abs); err == nil && isExecutable(info) {
			return abs, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, command)
	}

	for _, candidate := range sidecarCandidates(command) {
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate, nil
		}
	}

	if resolved, err := exec.LookPath(command); err == nil {
		if abs, absErr := filepath.Abs(resolved); absErr == nil {
			return abs, nil
		}
		return resolved, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, command)
}

func sidecarCandidates(name string) []string {
	var out []string
	if exe, err := executablePath(); err == nil && exe != "" {
		if real, err := filepath.EvalSymlinks(exe); err == nil {
			exe = real
		}
		out = append(out, filepath.Join(filepath.Dir(exe), name))
	}
	if wd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(wd, name))
	}
	return out
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

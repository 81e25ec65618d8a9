package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"hkxshift/internal/config"
	"hkxshift/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the pipeline needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "hkanno",
			Command:     cfg.ToolBinary(),
			Description: "Required to extract and merge annotation tracks",
		},
	}
	return deps.CheckBinaries(requirements)
}

// CheckTool reports whether the annotation tool resolves.
func CheckTool(cfg *config.Config) Result {
	const name = "Annotation tool"
	for _, status := range CheckSystemDeps(cfg) {
		if status.Available {
			return Result{Name: name, Passed: true, Detail: status.Resolved}
		}
		return Result{Name: name, Detail: status.Detail}
	}
	return Result{Name: name, Detail: "not configured"}
}

// CheckResultsRoot verifies the results root, or the nearest existing parent
// when the root has not been created yet.
func CheckResultsRoot(cfg *config.Config) Result {
	const name = "Results directory"
	path := cfg.Paths.ResultsDir
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		parent := nearestExisting(path)
		check := CheckDirectoryAccess(name, parent)
		if check.Passed {
			check.Detail = fmt.Sprintf("%s (not created yet, parent writable)", path)
		}
		return check
	}
	return CheckDirectoryAccess(name, path)
}

// CheckHistory reports the run ledger location.
func CheckHistory(cfg *config.Config) Result {
	const name = "Run history"
	if !cfg.History.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if cfg.Paths.HistoryDB == "" {
		return Result{Name: name, Detail: "history_db not configured"}
	}
	dir := nearestExisting(filepath.Dir(cfg.Paths.HistoryDB))
	check := CheckDirectoryAccess(name, dir)
	if check.Passed {
		check.Detail = cfg.Paths.HistoryDB
	}
	return check
}

func nearestExisting(path string) string {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		current = parent
	}
}

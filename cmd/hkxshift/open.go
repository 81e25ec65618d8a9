package main

import (
	"fmt"
	"os/exec"
	"runtime"
)

// startProcess launches a detached command. Tests replace it.
var startProcess = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// openFolder shows path in the platform file browser.
func openFolder(path string) error {
	name, args := openerCommand(runtime.GOOS, path)
	if err := startProcess(name, args...); err != nil {
		return fmt.Errorf("open %s with %s: %w", path, name, err)
	}
	return nil
}

func openerCommand(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		return "explorer", []string{path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hkxshift/internal/audit"
	"hkxshift/internal/config"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "log [source-name|path]",
		Short: "Print a run's audit log",
		Long: "Print the tail of an audit log. With no argument the most recently written " +
			"log in the results directory is used. A bare name selects <name>_log.txt.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			path, err := resolveLogPath(cfg, arg)
			if err != nil {
				return err
			}
			return printLog(cmd.Context(), cmd.OutOrStdout(), path, lines, follow)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 40, "Number of trailing lines to show (0 for all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing until the run finishes")
	return cmd
}

func printLog(ctx context.Context, out io.Writer, path string, lines int, follow bool) error {
	opts := audit.TailOptions{Offset: -1, Limit: lines}
	if lines <= 0 {
		opts.Offset = 0
	}
	for {
		result, err := audit.Tail(ctx, path, opts)
		if err != nil {
			return err
		}
		for _, line := range result.Lines {
			fmt.Fprintln(out, line)
		}
		if !follow || result.Ended {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		opts = audit.TailOptions{Offset: result.Offset, Follow: true, Wait: 2 * time.Second}
	}
}

// resolveLogPath maps an argument to an audit log. Existing files are used
// as given; anything else is treated as a source base name.
func resolveLogPath(cfg *config.Config, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg != "" {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			return arg, nil
		}
		path := filepath.Join(cfg.Paths.ResultsDir, audit.FileName(filepath.Base(arg)))
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("no audit log for %q in %s", arg, cfg.Paths.ResultsDir)
		}
		return path, nil
	}
	return latestLog(cfg.Paths.ResultsDir)
}

func latestLog(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, audit.FileName("*")))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", errors.New("no audit logs found in " + dir)
	}
	type candidate struct {
		path string
		mod  time.Time
	}
	candidates := make([]candidate, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		candidates = append(candidates, candidate{path: path, mod: info.ModTime()})
	}
	if len(candidates) == 0 {
		return "", errors.New("no audit logs found in " + dir)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].mod.After(candidates[j].mod) })
	return candidates[0].path, nil
}

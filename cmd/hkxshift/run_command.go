package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"hkxshift/internal/config"
	"hkxshift/internal/logging"
	"hkxshift/internal/pipeline"
	"hkxshift/internal/preflight"
)

type runFlags struct {
	scale               string
	preset              string
	noBackup            bool
	verifyBackup        bool
	keepIntermediates   bool
	noPreserveProtected bool
	open                bool
	yes                 bool
	debug               bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <source>",
		Short: "Rescale annotation timing for every moveset under source",
		Long: "Back up the source, extract each animation's annotations, rescale their " +
			"timestamps, and merge them into a new output tree. The source is never modified.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRescale(cmd, ctx, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.scale, "scale", "s", "", "Timing multiplier, for example 0.8 (faster) or 1.2 (slower)")
	cmd.Flags().StringVarP(&flags.preset, "preset", "p", "", "Named multiplier: faster, slower, or one of 0.7 0.8 0.9 1.1 1.2 1.3")
	cmd.Flags().BoolVar(&flags.noBackup, "no-backup", false, "Skip the pre-run backup of the source")
	cmd.Flags().BoolVar(&flags.verifyBackup, "verify-backup", false, "Checksum every backed-up file")
	cmd.Flags().BoolVar(&flags.keepIntermediates, "keep-intermediates", false, "Keep the converted and rescaled working trees")
	cmd.Flags().BoolVar(&flags.noPreserveProtected, "no-preserve-protected", false, "Rescale protected annotation lines too")
	cmd.Flags().BoolVar(&flags.open, "open", false, "Open the merged output folder when the run completes")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Accept advisories without prompting")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Show debug output on the console")
	return cmd
}

func runRescale(cmd *cobra.Command, ctx *commandContext, source string, flags runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	scaleText, err := resolveScaleText(flags.scale, flags.preset)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	interactive := isTerminal(stderr)
	logger, err := runLogger(cfg, stderr, flags.debug, interactive)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	store, err := ctx.openHistory()
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not be recorded"),
		)
	} else if store != nil {
		defer store.Close()
		opts = append(opts, pipeline.WithHistory(store))
	}
	runner := pipeline.New(cfg, opts...)

	req := pipeline.Request{
		Source:    source,
		ScaleText: scaleText,
		Options:   runOptions(cfg.Options, flags),
		Confirmed: flags.yes,
	}
	plan, err := runner.Preflight(cmd.Context(), req)
	var advErr *pipeline.AdvisoryError
	if errors.As(err, &advErr) {
		ok, promptErr := confirmAdvisories(cmd.InOrStdin(), stdout, advErr.Advisories, isTerminal(stdout))
		if promptErr != nil {
			return &exitError{code: exitFailure, err: promptErr}
		}
		if !ok {
			return &exitError{code: exitFailure, err: errDeclined}
		}
		req.Confirmed = true
		plan, err = runner.Preflight(cmd.Context(), req)
	}
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	result := executeWithProgress(cmd.Context(), runner, plan, stderr, logger, interactive)

	fmt.Fprint(stdout, renderRunSummary(plan, result, isTerminal(stdout)))
	if plan.Job.Options.OpenOutput && result.Status == pipeline.StatusCompleted {
		if err := openFolder(result.OutputDir); err != nil {
			logging.WarnWithContext(logger, "could not open output folder", "open_output_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "open "+result.OutputDir+" manually"),
			)
		}
	}
	return runExit(result)
}

// executeWithProgress runs the plan on its own goroutine and renders progress
// from a single channel. SIGINT and SIGTERM request a cooperative stop.
func executeWithProgress(ctx context.Context, runner *pipeline.Runner, plan pipeline.Plan, out io.Writer, logger *slog.Logger, interactive bool) pipeline.Result {
	token := pipeline.NewCancelToken()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	events := make(chan pipeline.Progress, 64)
	done := make(chan pipeline.Result, 1)
	go func() {
		defer close(events)
		done <- runner.Execute(ctx, plan, token, func(p pipeline.Progress) {
			events <- p
		})
	}()

	reporter := newProgressReporter(out, plan.Processable(), logger, interactive)
	for {
		select {
		case <-signals:
			if !token.Cancelled() {
				token.Cancel()
				logger.Warn("stop requested; finishing the current file",
					logging.String(logging.FieldEventType, "stop_requested"))
			}
		case p, ok := <-events:
			if !ok {
				result := <-done
				reporter.finish(result.Status == pipeline.StatusCompleted)
				return result
			}
			reporter.update(p)
		}
	}
}

func resolveScaleText(scale, preset string) (string, error) {
	scale = strings.TrimSpace(scale)
	preset = strings.TrimSpace(preset)
	switch {
	case scale != "" && preset != "":
		return "", errors.New("use either --scale or --preset, not both")
	case preset != "":
		return preflight.ResolvePreset(preset)
	case scale != "":
		return scale, nil
	default:
		return "", errors.New("a multiplier is required (--scale or --preset)")
	}
}

func runOptions(defaults config.Options, flags runFlags) pipeline.Options {
	opts := pipeline.OptionsFromConfig(defaults)
	if flags.noBackup {
		opts.MakeBackup = false
	}
	if flags.verifyBackup {
		opts.VerifyBackup = true
	}
	if flags.keepIntermediates {
		opts.DeleteIntermediates = false
	}
	if flags.noPreserveProtected {
		opts.PreserveProtected = false
	}
	if flags.open {
		opts.OpenOutput = true
	}
	return opts
}

// runLogger builds the console sink. With a progress bar on screen only
// warnings reach the console unless --debug is set; the audit log still gets
// everything.
func runLogger(cfg *config.Config, out io.Writer, debug, interactive bool) (*slog.Logger, error) {
	if interactive && !debug {
		return logging.New(logging.Options{Level: "warn", Format: cfg.Logging.Format, Output: out})
	}
	return logging.NewFromConfig(cfg, out, debug)
}

func runExit(result pipeline.Result) error {
	switch result.Status {
	case pipeline.StatusCancelled:
		return &exitError{code: exitCancelled}
	case pipeline.StatusAborted:
		return &exitError{code: exitFailure, err: result.Err}
	}
	if result.Summary.Failed > 0 {
		return &exitError{code: exitFailure, err: fmt.Errorf("%d file(s) failed; details in %s", result.Summary.Failed, result.LogPath)}
	}
	return nil
}

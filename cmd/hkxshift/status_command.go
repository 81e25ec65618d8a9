package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"hkxshift/internal/config"
	"hkxshift/internal/deps"
	"hkxshift/internal/preflight"
	"hkxshift/internal/staging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the annotation tool and output locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			lines := renderSectionHeader("Dependencies", colorize)
			lines = append(lines, dependencyLines(preflight.CheckSystemDeps(cfg), colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Locations", colorize)...)
			lines = append(lines, resultLine(preflight.CheckResultsRoot(cfg), statusError, colorize))
			lines = append(lines, resultLine(preflight.CheckHistory(cfg), statusWarn, colorize))
			lines = append(lines, resultTreeLines(cfg.Paths.ResultsDir, colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			lines = append(lines, configLines(ctx.configPath, cfg, colorize)...)
			writeLines(out, lines)

			for _, status := range preflight.CheckSystemDeps(cfg) {
				if !status.Available && !status.Optional {
					return &exitError{code: exitFailure}
				}
			}
			return nil
		},
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses))
	for _, status := range statuses {
		kind := statusOK
		message := fmt.Sprintf("Ready (%s)", status.Resolved)
		if !status.Available {
			kind = statusError
			if status.Optional {
				kind = statusWarn
			}
			message = status.Detail
			if status.Description != "" {
				message = fmt.Sprintf("%s; %s", message, status.Description)
			}
		}
		lines = append(lines, renderStatusLine(status.Name, kind, message, colorize))
	}
	return lines
}

func resultLine(result preflight.Result, failKind statusKind, colorize bool) string {
	if result.Passed {
		return renderStatusLine(result.Name, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(result.Name, failKind, result.Detail, colorize)
}

// resultTreeLines lists the output trees already under the results root.
func resultTreeLines(root string, colorize bool) []string {
	dirs, err := staging.ListDirectories(root)
	if err != nil {
		return []string{renderStatusLine("Result trees", statusWarn, err.Error(), colorize)}
	}
	if len(dirs) == 0 {
		return []string{renderStatusLine("Result trees", statusInfo, "None", colorize)}
	}
	lines := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		lines = append(lines, renderStatusLine(dir.Name, statusInfo,
			fmt.Sprintf("%s, updated %s", humanize.IBytes(uint64(dir.Size)), humanize.Time(dir.ModTime)), colorize))
	}
	return lines
}

func configLines(path string, cfg *config.Config, colorize bool) []string {
	source := path
	if source == "" {
		source = "defaults"
	}
	return []string{
		renderStatusLine("Config file", statusInfo, source, colorize),
		renderStatusLine("Scale bounds", statusInfo, fmt.Sprintf("%s to %s (recommended %s to %s)",
			preflight.FormatScale(cfg.Scale.Min), preflight.FormatScale(cfg.Scale.Max),
			preflight.FormatScale(cfg.Scale.RecommendedMin), preflight.FormatScale(cfg.Scale.RecommendedMax)), colorize),
		renderStatusLine("Backup", statusInfo, yesNo(cfg.Options.Backup), colorize),
		renderStatusLine("Clean intermediates", statusInfo, yesNo(cfg.Options.DeleteIntermediates), colorize),
		renderStatusLine("Protected marker", statusInfo, cfg.Annotations.ProtectedMarker, colorize),
	}
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hkxshift/internal/classify"
	"hkxshift/internal/pipeline"
)

type inspectMoveset struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Processable []string `json:"processable"`
	Scar        []string `json:"preserve_scar"`
	Cpr         []string `json:"preserve_cpr"`
	Support     []string `json:"support"`
	Ignored     []string `json:"ignored"`
}

type inspectReport struct {
	Source   string           `json:"source"`
	Mode     string           `json:"mode"`
	Movesets []inspectMoveset `json:"movesets"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "inspect <source>",
		Short: "Show how a source would be discovered and classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runner := pipeline.New(cfg)
			mode, plans, err := runner.Inspect(args[0])
			if err != nil {
				return err
			}
			report := buildInspectReport(args[0], string(mode), plans)
			if jsonOutput {
				return writeJSON(cmd, report)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderInspect(report, runner.Classifier(), verbose))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List preserved files per moveset")
	return cmd
}

func buildInspectReport(source, mode string, plans []pipeline.MovesetPlan) inspectReport {
	report := inspectReport{Source: source, Mode: mode}
	for _, mp := range plans {
		report.Movesets = append(report.Movesets, inspectMoveset{
			Name:        mp.Moveset.Name,
			Path:        mp.Moveset.Path,
			Processable: nonNil(mp.Report.Processable),
			Scar:        nonNil(mp.Report.Scar),
			Cpr:         nonNil(mp.Report.Cpr),
			Support:     nonNil(mp.Report.Support),
			Ignored:     nonNil(mp.Report.Ignored),
		})
	}
	return report
}

func renderInspect(report inspectReport, classifier *classify.Classifier, verbose bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s (%s mode, %d moveset(s))\n", report.Source, report.Mode, len(report.Movesets))

	rows := make([][]string, 0, len(report.Movesets))
	var totals [5]int
	for _, ms := range report.Movesets {
		counts := [5]int{len(ms.Processable), len(ms.Scar), len(ms.Cpr), len(ms.Support), len(ms.Ignored)}
		row := []string{ms.Name}
		for i, n := range counts {
			totals[i] += n
			row = append(row, strconv.Itoa(n))
		}
		rows = append(rows, row)
	}
	footer := []string{"Total"}
	for _, n := range totals {
		footer = append(footer, strconv.Itoa(n))
	}
	b.WriteString(renderTableSpec(tableSpec{
		Headers: []string{"Moveset", "Processable", "SCAR", "CPR", "Support", "Ignored"},
		Rows:    rows,
		Footer:  footer,
		Aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	}))
	b.WriteString("\n")

	if !verbose {
		return b.String()
	}
	for _, ms := range report.Movesets {
		if len(ms.Scar) == 0 && len(ms.Cpr) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", ms.Name)
		for _, name := range ms.Scar {
			fmt.Fprintf(&b, "  scar   %s\n", name)
		}
		for _, name := range ms.Cpr {
			fmt.Fprintf(&b, "  %-6s %s\n", classifier.CprKind(name), name)
		}
	}
	return b.String()
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"hkxshift/internal/pipeline"
)

func renderRunSummary(plan pipeline.Plan, result pipeline.Result, colorize bool) string {
	var b strings.Builder
	s := result.Summary

	for _, line := range renderSectionHeader(fmt.Sprintf("%s x%s", plan.Job.Base, plan.Job.ScaleText), colorize) {
		b.WriteString(line + "\n")
	}
	b.WriteString(renderStatusLine("Status", runStatusKind(result), runStatusMessage(result), colorize) + "\n")

	rows := [][]string{
		{"Movesets", strconv.Itoa(s.Movesets)},
		{"Animation files", strconv.Itoa(s.AssetFiles)},
		{"Extracted", strconv.Itoa(s.Extracted)},
		{"Rescaled", strconv.Itoa(s.Rescaled)},
		{"Merged", strconv.Itoa(s.Merged)},
		{"Failed", strconv.Itoa(s.Failed)},
	}
	if s.ScarSkipped > 0 {
		rows = append(rows, []string{"SCAR files preserved", strconv.Itoa(s.ScarSkipped)})
	}
	if s.CprSkipped > 0 {
		rows = append(rows, []string{"CPR files preserved", strconv.Itoa(s.CprSkipped)})
	}
	if s.ProtectedLinesPreserved > 0 {
		rows = append(rows, []string{"SCAR annotations kept", strconv.Itoa(s.ProtectedLinesPreserved)})
	}
	rows = append(rows, []string{"Support files copied", fmt.Sprintf("%d (%d txt, %d json)", s.SupportCopied, s.TxtFiles, s.JSONFiles)})
	if plan.Job.Options.MakeBackup {
		rows = append(rows, []string{"Backed up", fmt.Sprintf("%d files (%s)", s.BackedUp, humanize.IBytes(uint64(s.BackupBytes)))})
	}
	rows = append(rows, []string{"Elapsed", result.Duration.Round(10 * time.Millisecond).String()})

	b.WriteString(renderTable([]string{"Item", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")

	if failed := failedFiles(result.Files); len(failed) > 0 {
		b.WriteString(renderTableSpec(tableSpec{
			Title:   "Failed files",
			Headers: []string{"Moveset", "File", "Phase", "Error"},
			Rows:    failed,
		}))
		b.WriteString("\n")
	}
	if result.Status != pipeline.StatusAborted {
		fmt.Fprintf(&b, "Output: %s\n", result.OutputDir)
	}
	if result.LogPath != "" {
		fmt.Fprintf(&b, "Log:    %s\n", result.LogPath)
	}
	return b.String()
}

func runStatusKind(result pipeline.Result) statusKind {
	switch {
	case result.Status == pipeline.StatusAborted:
		return statusError
	case result.Status == pipeline.StatusCancelled, result.Summary.Failed > 0:
		return statusWarn
	default:
		return statusOK
	}
}

func runStatusMessage(result pipeline.Result) string {
	switch result.Status {
	case pipeline.StatusAborted:
		return "Aborted: " + result.Reason
	case pipeline.StatusCancelled:
		return "Cancelled; output is partial"
	}
	if result.Summary.Failed > 0 {
		return fmt.Sprintf("Completed with %d failure(s)", result.Summary.Failed)
	}
	return "Completed"
}

func failedFiles(files []pipeline.FileResult) [][]string {
	var rows [][]string
	for _, f := range files {
		if f.State != pipeline.StateFailed {
			continue
		}
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		rows = append(rows, []string{f.Moveset, f.File, f.Phase, msg})
	}
	return rows
}

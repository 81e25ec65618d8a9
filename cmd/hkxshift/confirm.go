package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"hkxshift/internal/preflight"
)

var errDeclined = errors.New("run declined")

// confirmAdvisories lists advisories and asks once to continue. An empty or
// unreadable answer declines.
func confirmAdvisories(in io.Reader, out io.Writer, advisories []preflight.Advisory, colorize bool) (bool, error) {
	writeLines(out, renderSectionHeader("Please confirm", colorize))
	for _, adv := range advisories {
		fmt.Fprintln(out, renderStatusLine(advisoryLabel(adv.Kind), statusWarn, adv.Message, colorize))
	}
	fmt.Fprint(out, "Continue? [y/N]: ")

	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	fmt.Fprintln(out)
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func advisoryLabel(kind string) string {
	switch kind {
	case preflight.AdvisoryExtremeScale:
		return "Scale"
	case preflight.AdvisorySameMultiplier:
		return "Previous run"
	default:
		return "Advisory"
	}
}

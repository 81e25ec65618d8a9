package annotation

import "strings"

// Stats counts line kinds seen by Rescale.
type Stats struct {
	Lines     int
	Timed     int
	Protected int
	Opaque    int
}

// Split breaks text into lines, keeping each line's terminator. The result
// re-joins to exactly the input.
func Split(text string, marker string) []Line {
	var lines []Line
	for len(text) > 0 {
		idx := strings.IndexByte(text, '\n')
		var body, term string
		if idx < 0 {
			body, text = text, ""
		} else {
			body, term = text[:idx], "\n"
			text = text[idx+1:]
			if strings.HasSuffix(body, "\r") {
				body = body[:len(body)-1]
				term = "\r\n"
			}
		}
		line := ParseLine(body, marker)
		line.Terminator = term
		lines = append(lines, line)
	}
	return lines
}

// Rescale multiplies every timed offset in text by scale. Protected and
// opaque lines are emitted byte for byte. Line order and count are kept.
// Always pass the original extraction: applying Rescale twice compounds.
func Rescale(text string, scale float64, marker string) (string, Stats) {
	lines := Split(text, marker)
	var out strings.Builder
	out.Grow(len(text) + len(text)/4)
	stats := Stats{Lines: len(lines)}
	for _, line := range lines {
		switch line.Kind {
		case KindTimed:
			stats.Timed++
		case KindProtected:
			stats.Protected++
		default:
			stats.Opaque++
		}
		out.WriteString(line.Render(scale))
	}
	return out.String(), stats
}

// ContainsMarker reports whether any line of text carries marker.
func ContainsMarker(text, marker string) bool {
	return marker != "" && strings.Contains(text, marker)
}

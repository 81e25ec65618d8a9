package annotation

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Kind classifies one line of extracted annotation text.
type Kind int

const (
	// KindOpaque lines are passed through unchanged.
	KindOpaque Kind = iota
	// KindTimed lines start with a numeric offset followed by a payload.
	KindTimed
	// KindProtected lines contain the protected marker and are never rescaled.
	KindProtected
)

func (k Kind) String() string {
	switch k {
	case KindTimed:
		return "timed"
	case KindProtected:
		return "protected"
	default:
		return "opaque"
	}
}

// Line is one parsed annotation line. Raw holds the body without its
// terminator; Terminator holds "\n", "\r\n", or "" for a final unterminated line.
type Line struct {
	Kind       Kind
	Offset     float64
	Payload    string
	Raw        string
	Terminator string
}

// ParseLine classifies a single line body. An empty marker disables protection.
func ParseLine(body, marker string) Line {
	line := Line{Kind: KindOpaque, Raw: body}
	if marker != "" && strings.Contains(body, marker) {
		line.Kind = KindProtected
		return line
	}
	trimmed := strings.TrimLeftFunc(body, unicode.IsSpace)
	split := strings.IndexFunc(trimmed, unicode.IsSpace)
	if split < 0 {
		return line
	}
	token := trimmed[:split]
	rest := strings.TrimSpace(trimmed[split:])
	if rest == "" {
		return line
	}
	offset, ok := parseDecimal(token)
	if !ok {
		return line
	}
	line.Kind = KindTimed
	line.Offset = offset
	line.Payload = rest
	return line
}

// Render serializes the line, rescaling timed offsets by scale.
func (l Line) Render(scale float64) string {
	if l.Kind != KindTimed {
		return l.Raw + l.Terminator
	}
	return FormatOffset(l.Offset*scale) + " " + l.Payload + l.Terminator
}

// FormatOffset renders an offset with six fractional digits.
func FormatOffset(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// parseDecimal accepts an optionally signed decimal with an optional
// fraction and exponent. Hex, inf, nan, and digit separators are rejected.
func parseDecimal(token string) (float64, bool) {
	i := 0
	if i < len(token) && (token[i] == '+' || token[i] == '-') {
		i++
	}
	digits := 0
	for i < len(token) && isDigit(token[i]) {
		i++
		digits++
	}
	if i < len(token) && token[i] == '.' {
		i++
		for i < len(token) && isDigit(token[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	if i < len(token) && (token[i] == 'e' || token[i] == 'E') {
		i++
		if i < len(token) && (token[i] == '+' || token[i] == '-') {
			i++
		}
		exp := 0
		for i < len(token) && isDigit(token[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return 0, false
		}
	}
	if i != len(token) {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

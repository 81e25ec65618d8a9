package preflight

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"hkxshift/internal/config"
)

var (
	// ErrInvalidScale reports scale text that is not a finite decimal number.
	ErrInvalidScale = errors.New("invalid scale")
	// ErrNoopScale reports a multiplier of exactly 1.0.
	ErrNoopScale = errors.New("scale 1.0 leaves timings unchanged")
	// ErrScaleOutOfRange reports a multiplier outside the hard bounds.
	ErrScaleOutOfRange = errors.New("scale out of range")
	// ErrUnknownPreset reports a preset name with no mapped value.
	ErrUnknownPreset = errors.New("unknown preset")
)

// Preset is a named multiplier offered as a shortcut.
type Preset struct {
	Name  string
	Value string
	Label string
}

// Presets lists the recommended multipliers in ascending order.
var Presets = []Preset{
	{Name: "faster", Value: "0.7", Label: "x0.7 (Faster)"},
	{Name: "0.8", Value: "0.8", Label: "x0.8"},
	{Name: "0.9", Value: "0.9", Label: "x0.9"},
	{Name: "1.1", Value: "1.1", Label: "x1.1"},
	{Name: "1.2", Value: "1.2", Label: "x1.2"},
	{Name: "slower", Value: "1.3", Label: "x1.3 (Slower)"},
}

// ResolvePreset maps a preset name or value ("faster", "0.7", "x0.7") to its
// scale text.
func ResolvePreset(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "x")
	for _, preset := range Presets {
		if key == preset.Name || key == preset.Value {
			return preset.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// ParseScale converts user text to a multiplier. Surrounding whitespace is
// ignored; NaN and infinities are rejected.
func ParseScale(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidScale)
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScale, text)
	}
	return value, nil
}

// FormatScale renders a multiplier with the shortest exact representation.
func FormatScale(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// CheckScale applies the no-op and hard bound rules in that order.
func CheckScale(value float64, bounds config.Scale) error {
	if value == 1.0 {
		return ErrNoopScale
	}
	if value < bounds.Min || value > bounds.Max {
		return fmt.Errorf("%w: %g not in [%g, %g]", ErrScaleOutOfRange, value, bounds.Min, bounds.Max)
	}
	return nil
}

// Advisory is a warning the caller must acknowledge before a run proceeds.
type Advisory struct {
	Kind    string
	Message string
}

const (
	AdvisoryExtremeScale   = "extreme_scale"
	AdvisorySameMultiplier = "same_multiplier"
)

// Recommended reports whether value sits strictly inside the recommended range.
func Recommended(value float64, bounds config.Scale) bool {
	return value > bounds.RecommendedMin && value < bounds.RecommendedMax
}

// ScaleAdvisories returns the advisories raised by the multiplier alone.
func ScaleAdvisories(value float64, bounds config.Scale) []Advisory {
	if Recommended(value, bounds) {
		return nil
	}
	return []Advisory{{
		Kind: AdvisoryExtremeScale,
		Message: fmt.Sprintf("speed multiplier %g is outside the recommended range (%g, %g); "+
			"animations may play much faster or slower with inaccurate hit registration",
			value, bounds.RecommendedMin, bounds.RecommendedMax),
	}}
}

// PreviousRun describes the last recorded run for the same-multiplier notice.
type PreviousRun struct {
	Source string
	Scale  float64
}

// SameMultiplierAdvisory flags a run whose source changed while the
// multiplier matches the previous run.
func SameMultiplierAdvisory(prev *PreviousRun, source string, value float64) (Advisory, bool) {
	if prev == nil || prev.Source == "" {
		return Advisory{}, false
	}
	if prev.Source == source || prev.Scale != value {
		return Advisory{}, false
	}
	return Advisory{
		Kind: AdvisorySameMultiplier,
		Message: fmt.Sprintf("source changed from %s but the speed multiplier (%g) matches the previous run",
			prev.Source, value),
	}, true
}

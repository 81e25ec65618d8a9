package classify

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"hkxshift/internal/config"
)

// Class labels a moveset member by how the pipeline treats it.
type Class int

const (
	// ClassIgnored files are neither processed nor copied.
	ClassIgnored Class = iota
	// ClassProcessable assets go through extract, rescale, and merge.
	ClassProcessable
	// ClassPreserveScar assets carry a SCAR marker and are copied unchanged.
	ClassPreserveScar
	// ClassPreserveCpr assets carry an equip/unequip marker and are copied unchanged.
	ClassPreserveCpr
	// ClassSupport files are sidecars copied through verbatim.
	ClassSupport
)

func (c Class) String() string {
	switch c {
	case ClassProcessable:
		return "processable"
	case ClassPreserveScar:
		return "preserve_scar"
	case ClassPreserveCpr:
		return "preserve_cpr"
	case ClassSupport:
		return "support"
	default:
		return "ignored"
	}
}

// IsAsset reports whether the class belongs to an asset file.
func (c Class) IsAsset() bool {
	return c == ClassProcessable || c == ClassPreserveScar || c == ClassPreserveCpr
}

// Preserved reports whether the file is copied without tool processing.
func (c Class) Preserved() bool {
	return c == ClassPreserveScar || c == ClassPreserveCpr
}

// CPR sub-kinds reported by CprKind.
const (
	CprEquip   = "equip"
	CprUnequip = "unequip"
)

// Rules holds the name patterns used for classification. Markers are matched
// as case-insensitive substrings, extensions as case-insensitive suffixes.
type Rules struct {
	AssetExtensions   []string
	SupportExtensions []string
	ScarMarkers       []string
	CprMarkers        []string
}

// DefaultRules returns the built-in rules.
func DefaultRules() Rules {
	return FromConfig(config.Default().Classify)
}

// FromConfig builds rules from the [classify] configuration section.
func FromConfig(cfg config.Classify) Rules {
	return Rules{
		AssetExtensions:   append([]string(nil), cfg.AssetExtensions...),
		SupportExtensions: append([]string(nil), cfg.SupportExtensions...),
		ScarMarkers:       append([]string(nil), cfg.ScarMarkers...),
		CprMarkers:        append([]string(nil), cfg.CprMarkers...),
	}
}

// Classifier applies a fixed rule set. It is safe for concurrent use.
type Classifier struct {
	assetExts   []string
	supportExts []string
	scar        []string
	cpr         []string
}

// New folds every pattern once so Classify only folds the file name.
func New(rules Rules) *Classifier {
	return &Classifier{
		assetExts:   foldAll(rules.AssetExtensions),
		supportExts: foldAll(rules.SupportExtensions),
		scar:        foldAll(rules.ScarMarkers),
		cpr:         foldAll(rules.CprMarkers),
	}
}

var defaultClassifier = New(DefaultRules())

// Classify labels name using the built-in rules.
func Classify(name string) Class {
	return defaultClassifier.Classify(name)
}

// Classify labels a file by its base name. Non-asset files are Support or
// Ignored. Asset files are checked for SCAR markers first, then CPR markers,
// and are Processable otherwise. The function is total: every name maps to
// exactly one class.
func (c *Classifier) Classify(name string) Class {
	folded := fold(filepath.Base(name))
	if !hasAnySuffix(folded, c.assetExts) {
		if hasAnySuffix(folded, c.supportExts) {
			return ClassSupport
		}
		return ClassIgnored
	}
	if containsAny(folded, c.scar) {
		return ClassPreserveScar
	}
	if containsAny(folded, c.cpr) {
		return ClassPreserveCpr
	}
	return ClassProcessable
}

// IsAsset reports whether name carries an asset extension.
func (c *Classifier) IsAsset(name string) bool {
	return hasAnySuffix(fold(filepath.Base(name)), c.assetExts)
}

// CprKind returns CprUnequip or CprEquip for CPR-named files, or "".
func (c *Classifier) CprKind(name string) string {
	folded := fold(filepath.Base(name))
	switch {
	case strings.Contains(folded, CprUnequip):
		return CprUnequip
	case strings.Contains(folded, CprEquip):
		return CprEquip
	default:
		return ""
	}
}

// fold applies Unicode case folding. A Caser carries state, so each call
// builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func foldAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, fold(v))
		}
	}
	return out
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

package pipeline

import (
	"path/filepath"
	"strings"

	"hkxshift/internal/audit"
)

// Layout names every output location of a run under the results root.
type Layout struct {
	Root string
	Base string
}

// Converted holds the extracted copies.
func (l Layout) Converted() string { return filepath.Join(l.Root, l.Base+"-converted") }

// Rescaled holds the rewritten annotations and the assets they merge into.
func (l Layout) Rescaled() string { return filepath.Join(l.Root, l.Base+"-rescaled") }

// Merged holds the final output.
func (l Layout) Merged() string { return filepath.Join(l.Root, l.Base+"-merged") }

// Backup holds the pre-run snapshot of the source.
func (l Layout) Backup() string { return filepath.Join(l.Root, l.Base+"-backup") }

// Log is the audit log path.
func (l Layout) Log() string { return filepath.Join(l.Root, audit.FileName(l.Base)) }

// Intermediates lists the trees removed by intermediate cleanup.
func (l Layout) Intermediates() []string {
	return []string{l.Converted(), l.Rescaled()}
}

// workPaths returns the asset and annotation paths of asset inside a
// per-asset working directory under tree.
func workPaths(tree, moveset, asset string) (assetPath, annotationPath string) {
	dir := filepath.Join(tree, moveset, asset)
	stem := strings.TrimSuffix(asset, filepath.Ext(asset))
	return filepath.Join(dir, asset), filepath.Join(dir, stem+".txt")
}

func (l Layout) convertedPaths(moveset, asset string) (string, string) {
	return workPaths(l.Converted(), moveset, asset)
}

func (l Layout) rescaledPaths(moveset, asset string) (string, string) {
	return workPaths(l.Rescaled(), moveset, asset)
}

func (l Layout) mergedPath(moveset, name string) string {
	return filepath.Join(l.Merged(), moveset, name)
}

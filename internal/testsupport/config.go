package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"hkxshift/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ResultsDir = filepath.Join(base, "HKXShift_results")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "data", "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithHistoryDisabled turns off the run ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// stubTool mimics hkanno by treating the asset bytes as the annotation
// track. Inputs containing CORRUPT fail with exit status 1.
const stubTool = `#!/bin/sh
echo "Loading hctFilterTexture.dll"
case "$1" in
dump)
	out="$3"; in="$4"
	if grep -q CORRUPT "$in"; then echo "failed to load $in" >&2; exit 1; fi
	cp "$in" "$out"
	;;
update)
	txt="$3"; asset="$4"
	if grep -q CORRUPT "$txt"; then echo "failed to parse $txt" >&2; exit 1; fi
	cp "$txt" "$asset"
	;;
*)
	echo "usage: hkanno dump|update" >&2; exit 2
	;;
esac
`

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the configured annotation tool
// is stubbed and the config points at it directly.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		pinTool := len(names) == 0
		if pinTool {
			names = []string{b.cfg.Tool.Binary}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			target := filepath.Join(binDir, filepath.Base(name))
			if err := os.WriteFile(target, []byte(stubTool), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			if pinTool {
				b.cfg.Tool.Binary = target
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ResultsDir)
}

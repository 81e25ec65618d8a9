package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and state locations.
type Paths struct {
	ResultsDir string `toml:"results_dir"`
	HistoryDB  string `toml:"history_db"`
}

// Tool configures the external annotation tool.
type Tool struct {
	Binary         string   `toml:"binary"`
	NoiseMarkers   []string `toml:"noise_markers"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Scale holds the multiplier bounds. Min and Max are inclusive hard bounds.
// Values at or beyond RecommendedMin/RecommendedMax require confirmation.
type Scale struct {
	Min            float64 `toml:"min"`
	Max            float64 `toml:"max"`
	RecommendedMin float64 `toml:"recommended_min"`
	RecommendedMax float64 `toml:"recommended_max"`
}

// Annotations configures annotation rewriting.
type Annotations struct {
	ProtectedMarker string `toml:"protected_marker"`
}

// Classify contains the file name rules used to sort moveset contents.
type Classify struct {
	AssetExtensions   []string `toml:"asset_extensions"`
	SupportExtensions []string `toml:"support_extensions"`
	ScarMarkers       []string `toml:"scar_markers"`
	CprMarkers        []string `toml:"cpr_markers"`
}

// Options holds default run switches. CLI flags override them per run.
type Options struct {
	Backup              bool `toml:"backup"`
	VerifyBackup        bool `toml:"verify_backup"`
	DeleteIntermediates bool `toml:"delete_intermediates"`
	PreserveProtected   bool `toml:"preserve_protected"`
	OpenOutput          bool `toml:"open_output"`
}

// History controls the local run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for console log output. The per-run audit
// log always records debug and above.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for hkxshift.
//
// Configuration sections:
//   - Paths: results root and history database
//   - Tool: annotation tool binary and output filtering
//   - Scale: hard and recommended multiplier bounds
//   - Annotations: protected marker
//   - Classify: asset, support, and protected-file naming rules
//   - Options: default run switches
//   - History: run ledger toggle
//   - Logging: console format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Tool        Tool        `toml:"tool"`
	Scale       Scale       `toml:"scale"`
	Annotations Annotations `toml:"annotations"`
	Classify    Classify    `toml:"classify"`
	Options     Options     `toml:"options"`
	History     History     `toml:"history"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("hkxshift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the results root and the history database directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.ResultsDir}
	if c.History.Enabled && c.Paths.HistoryDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.HistoryDB))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ToolBinary returns the configured annotation tool executable.
func (c *Config) ToolBinary() string {
	return c.Tool.Binary
}

// ToolTimeout returns the per-invocation tool timeout, zero meaning none.
func (c *Config) ToolTimeout() time.Duration {
	if c.Tool.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Tool.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultHistoryPath() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "hkxshift", "history.db")
	}
	return defaultHistoryDB
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

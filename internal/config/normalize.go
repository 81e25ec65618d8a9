package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTool()
	c.normalizeAnnotations()
	c.normalizeClassify()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		c.Paths.ResultsDir = defaultResultsDir
	}
	if c.Paths.ResultsDir, err = expandPath(strings.TrimSpace(c.Paths.ResultsDir)); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryPath()
	}
	if c.Paths.HistoryDB, err = expandPath(strings.TrimSpace(c.Paths.HistoryDB)); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeTool() {
	c.Tool.Binary = strings.TrimSpace(c.Tool.Binary)
	if value, ok := os.LookupEnv("HKXSHIFT_TOOL"); ok && strings.TrimSpace(value) != "" {
		c.Tool.Binary = strings.TrimSpace(value)
	}
	if c.Tool.Binary == "" {
		c.Tool.Binary = defaultToolBinary
	}
	c.Tool.NoiseMarkers = trimList(c.Tool.NoiseMarkers)
}

func (c *Config) normalizeAnnotations() {
	c.Annotations.ProtectedMarker = strings.TrimSpace(c.Annotations.ProtectedMarker)
	if c.Annotations.ProtectedMarker == "" {
		c.Annotations.ProtectedMarker = defaultProtectedMarker
	}
}

func (c *Config) normalizeClassify() {
	c.Classify.AssetExtensions = normalizeExtensions(c.Classify.AssetExtensions)
	c.Classify.SupportExtensions = normalizeExtensions(c.Classify.SupportExtensions)
	c.Classify.ScarMarkers = lowerList(c.Classify.ScarMarkers)
	c.Classify.CprMarkers = lowerList(c.Classify.CprMarkers)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func lowerList(values []string) []string {
	out := trimList(values)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}

func normalizeExtensions(values []string) []string {
	out := lowerList(values)
	for i, ext := range out {
		if !strings.HasPrefix(ext, ".") {
			out[i] = "." + ext
		}
	}
	return out
}

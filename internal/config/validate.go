package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTool(); err != nil {
		return err
	}
	if err := c.validateScale(); err != nil {
		return err
	}
	if err := c.validateClassify(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTool() error {
	if c.Tool.Binary == "" {
		return errors.New("tool.binary must be set")
	}
	if c.Tool.TimeoutSeconds < 0 {
		return errors.New("tool.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateScale() error {
	s := c.Scale
	for key, value := range map[string]float64{
		"scale.min":             s.Min,
		"scale.max":             s.Max,
		"scale.recommended_min": s.RecommendedMin,
		"scale.recommended_max": s.RecommendedMax,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
			return fmt.Errorf("%s must be a positive number", key)
		}
	}
	if s.Min >= s.Max {
		return errors.New("scale.min must be less than scale.max")
	}
	if s.RecommendedMin >= s.RecommendedMax {
		return errors.New("scale.recommended_min must be less than scale.recommended_max")
	}
	if s.Min > 1 || s.Max < 1 {
		return errors.New("scale.min and scale.max must bracket 1.0")
	}
	return nil
}

func (c *Config) validateClassify() error {
	if len(c.Classify.AssetExtensions) == 0 {
		return errors.New("classify.asset_extensions must include at least one extension")
	}
	for _, asset := range c.Classify.AssetExtensions {
		for _, support := range c.Classify.SupportExtensions {
			if asset == support {
				return fmt.Errorf("classify: extension %q cannot be both asset and support", asset)
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

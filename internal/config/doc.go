// Package config loads, normalizes, and validates hkxshift configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the HKXSHIFT_TOOL environment
// override for the annotation tool. The Config type centralizes the results
// root, tool location, scale bounds, and classification rules so the CLI and
// pipeline discover them in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, lower-cased extensions, and clear validation errors.
package config

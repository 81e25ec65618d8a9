// Package staging manages intermediate result trees produced during a run.
package staging

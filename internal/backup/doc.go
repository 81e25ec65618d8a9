// Package backup snapshots a source tree before the pipeline mutates it.
package backup

// Package preflight provides readiness checks for the annotation tool, the
// results root and the run history, plus the multiplier rules applied before
// a run starts.
//
// These checks run in two contexts:
//   - The pipeline calls ParseScale, CheckScale and ScaleAdvisories while
//     building a plan. Failures abort the run before any output exists.
//   - The CLI "hkxshift status" command uses RunAll to display readiness.
package preflight

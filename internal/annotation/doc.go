// Package annotation parses and rescales extracted annotation text.
//
// Each line is Timed (numeric offset plus payload), Protected (contains the
// protected marker), or Opaque. Only Timed offsets change; they are written
// with six fractional digits independent of locale.
package annotation

// Package stats computes the read-only aggregate reports over an imported
// data set: how users relate to courses, and per-course enrollment and
// pricing. Results render either as JSON or as styled terminal output.
package stats

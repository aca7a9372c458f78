// Package measurement loads sensor box exports into validated, enriched
// record collections.
//
// A Loader parses the JSON array written by a box, rejects structurally
// malformed or out-of-range input with typed errors, collects non-fatal data
// quality warnings, and derives the hour of day, day/night flag, and dominant
// label of every segment. The resulting Collection is immutable and safe to
// share between goroutines.
package measurement

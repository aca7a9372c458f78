package measurement

import (
	"fmt"

	"sonalyze/internal/services"
)

// MalformedInputError reports a structural problem: the document is not an
// array, an entry is not an object, or a field is missing or has the wrong type.
// Index is -1 when the problem concerns the whole document.
type MalformedInputError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("malformed input: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("malformed input: segment %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("malformed input: segment %d: %s: %s", e.Index, e.Field, e.Reason)
	}
}

// Is lets callers match the shared validation marker.
func (e *MalformedInputError) Is(target error) bool { return target == services.ErrValidation }

// OutOfRangeError reports a value outside its physical bounds.
type OutOfRangeError struct {
	Index int
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("out of range: segment %d: %s=%g not in [%g, %g]", e.Index, e.Field, e.Value, e.Min, e.Max)
}

func (e *OutOfRangeError) Is(target error) bool { return target == services.ErrValidation }

// EmptyInputError reports a document without any segment.
type EmptyInputError struct {
	Source string
}

func (e *EmptyInputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("empty input: %s contains no segments", e.Source)
	}
	return "empty input: no segments to analyze"
}

func (e *EmptyInputError) Is(target error) bool { return target == services.ErrValidation }

// WarningKind classifies a non-fatal data quality issue.
type WarningKind string

const (
	WarnLengthMismatch WarningKind = "label_probability_mismatch"
	WarnMinAboveMax    WarningKind = "min_above_max"
	WarnLevelOutside   WarningKind = "level_outside_bounds"
	WarnInvalidRating  WarningKind = "invalid_rating"
)

// Warning is a data quality issue that did not abort the load.
type Warning struct {
	Index   int         `json:"index"`
	Kind    WarningKind `json:"kind"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("segment %d: %s", w.Index, w.Message)
}

package jsonget

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPathArgument is returned when a path accessor list is empty or
	// contains a value that is neither text nor a non-negative integer.
	ErrInvalidPathArgument = errors.New("invalid path argument")

	// ErrArgumentCount is returned when a function is called without a JSON
	// argument or without at least one path argument.
	ErrArgumentCount = errors.New("wrong number of arguments")

	// ErrArgumentType is returned when an argument's data type cannot be
	// interpreted by the function.
	ErrArgumentType = errors.New("unsupported argument type")

	// ErrColumnLength is returned when column arguments differ in length.
	ErrColumnLength = errors.New("column length mismatch")

	// ErrUnknownFunction is returned by Registry.Invoke for unregistered names.
	ErrUnknownFunction = errors.New("unknown function")
)

// PathArgError describes a rejected path accessor. It matches
// ErrInvalidPathArgument with errors.Is.
type PathArgError struct {
	// Position is the zero-based index of the offending accessor, or -1 when
	// the list as a whole is invalid.
	Position int
	Value    any
	Reason   string
}

func (e *PathArgError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidPathArgument, e.Reason)
	}
	return fmt.Sprintf("%s: accessor %d (%v): %s", ErrInvalidPathArgument, e.Position, e.Value, e.Reason)
}

func (e *PathArgError) Unwrap() error { return ErrInvalidPathArgument }

// Outcome classifies the result of evaluating one row.
type Outcome uint8

const (
	// Found means the path resolved and the value coerced to the output type.
	Found Outcome = iota
	// Absent means the path did not resolve or the value had the wrong kind.
	Absent
	// NullInput means the JSON text or a per-row path argument was null.
	NullInput
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Absent:
		return "absent"
	case NullInput:
		return "null_input"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Classify maps navigation and coercion results to an Outcome. Only Found
// produces a value; the other outcomes render as null.
func Classify(nullInput, found, coerced bool) Outcome {
	switch {
	case nullInput:
		return NullInput
	case found && coerced:
		return Found
	default:
		return Absent
	}
}

func argCountError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrArgumentCount, fmt.Sprintf(format, args...))
}

func argTypeError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrArgumentType, fmt.Sprintf(format, args...))
}

package topogo

import (
	"errors"
	"fmt"
)

var (
	// ErrNilDevice is returned when no compute device is supplied.
	ErrNilDevice = errors.New("topogo: compute device must not be nil")
)

// ErrInvalidEpsilon indicates a negative or NaN connectivity threshold.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidEpsilon struct {
	Epsilon float32
	cause   error
}

func (e *ErrInvalidEpsilon) Error() string {
	return fmt.Sprintf("invalid epsilon: %v", e.Epsilon)
}

func (e *ErrInvalidEpsilon) Unwrap() error { return e.cause }

// ErrResourceExhausted indicates that a pass was rejected because its
// pass-scoped buffers would exceed the configured memory budget.
//
// The pass is fatal but the process is not: retry with fewer landmark points
// or a larger budget.
type ErrResourceExhausted struct {
	PointCount    int
	RequiredBytes int64
	LimitBytes    int64
}

func (e *ErrResourceExhausted) Error() string {
	return fmt.Sprintf("resource exhausted: %d points need %d bytes, limit is %d",
		e.PointCount, e.RequiredBytes, e.LimitBytes)
}

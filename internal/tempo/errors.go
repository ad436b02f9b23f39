package tempo

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateInterval matches any *DegenerateIntervalError.
	ErrDegenerateInterval = errors.New("degenerate tap interval")
	// ErrInsufficientData matches any *InsufficientDataError.
	ErrInsufficientData = errors.New("insufficient tap data")
)

// DegenerateIntervalError reports a tap that is not strictly after the
// previous one. The rejected tap leaves the estimator unchanged.
type DegenerateIntervalError struct {
	Previous  int64
	Timestamp int64
}

func (e *DegenerateIntervalError) Error() string {
	return fmt.Sprintf("tap at %d ms is not after previous tap at %d ms", e.Timestamp, e.Previous)
}

// Is reports whether target is ErrDegenerateInterval.
func (e *DegenerateIntervalError) Is(target error) bool {
	return target == ErrDegenerateInterval
}

// InsufficientDataError reports an export attempt with fewer than two taps.
type InsufficientDataError struct {
	Taps int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("need at least 2 taps to build a tempo map, have %d", e.Taps)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

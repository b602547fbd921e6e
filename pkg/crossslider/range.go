package crossslider

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRange is returned when a bound change would leave an axis with minimum > maximum
var ErrInvalidRange = errors.New("invalid range: minimum must not exceed maximum")

// Range holds the inclusive bounds of a single slider axis
type Range struct {
	minimum float64
	maximum float64
}

// NewRange creates a Range, rejecting minimum > maximum
func NewRange(minimum float64, maximum float64) (Range, error) {
	r := Range{}
	if err := r.SetBounds(minimum, maximum); err != nil {
		return Range{}, err
	}

	return r, nil
}

// SetBounds replaces both bounds. On error the range is left untouched.
// Re-clamping any stored value is the caller's job.
func (r *Range) SetBounds(minimum float64, maximum float64) error {
	if math.IsNaN(minimum) || math.IsNaN(maximum) || minimum > maximum {
		return fmt.Errorf("set bounds [%v, %v]: %w", minimum, maximum, ErrInvalidRange)
	}

	r.minimum = minimum
	r.maximum = maximum

	return nil
}

// Minimum returns the lower bound
func (r Range) Minimum() float64 {
	return r.minimum
}

// Maximum returns the upper bound
func (r Range) Maximum() float64 {
	return r.maximum
}

// Span is maximum - minimum
func (r Range) Span() float64 {
	return r.maximum - r.minimum
}

// Degenerate reports whether the axis has no room to move (minimum == maximum)
func (r Range) Degenerate() bool {
	return r.maximum == r.minimum
}

// Contains reports whether v lies inside the inclusive bounds
func (r Range) Contains(v float64) bool {
	return v >= r.minimum && v <= r.maximum
}

// Clamp bounds v into [minimum, maximum]. NaN has no place on the axis and clamps to minimum.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.minimum
	}

	if v > r.maximum {
		return r.maximum
	}

	if v < r.minimum {
		return r.minimum
	}

	return v
}

func (r Range) String() string {
	return fmt.Sprintf("[%v, %v]", r.minimum, r.maximum)
}

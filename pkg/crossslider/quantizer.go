package crossslider

import (
	"errors"
	"fmt"
	"math"

	"github.com/jax-b/crossslider/pkg/crossslider/util"
)

// ErrInvalidStep is returned for a quantization step that isn't a positive, finite number
var ErrInvalidStep = errors.New("invalid step: must be positive")

// Quantizer snaps values to multiples of a fixed step. The zero value is disabled
// and leaves values untouched; an enabled Quantizer always carries a positive step.
type Quantizer struct {
	step    float64
	enabled bool
}

// NewQuantizer creates an enabled Quantizer. Non-positive steps are rejected rather
// than quietly turning quantization off - use the zero value for that.
func NewQuantizer(step float64) (Quantizer, error) {
	if !util.Finite(step) || step <= 0 {
		return Quantizer{}, fmt.Errorf("new quantizer (step %v): %w", step, ErrInvalidStep)
	}

	return Quantizer{step: step, enabled: true}, nil
}

// Enabled reports whether snapping is active
func (q Quantizer) Enabled() bool {
	return q.enabled
}

// Step returns the step size and whether it's in effect
func (q Quantizer) Step() (float64, bool) {
	return q.step, q.enabled
}

// Snap rounds v to the nearest multiple of the step. Halfway values round away
// from zero (math.Round), so with a 0.25 step 0.125 goes to 0.25 and 0.375 to 0.5.
func (q Quantizer) Snap(v float64) float64 {
	if !q.enabled {
		return v
	}

	return math.Round(v/q.step) * q.step
}

func (q Quantizer) String() string {
	if !q.enabled {
		return "disabled"
	}

	return fmt.Sprintf("step(%v)", q.step)
}

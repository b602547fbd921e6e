package crossslider

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jax-b/crossslider/pkg/crossslider/util"
)

// ErrInvalidGeometry is returned for track or thumb sizes that can't be laid out
var ErrInvalidGeometry = errors.New("invalid geometry")

const (
	defaultMinimumValue = -1.0
	defaultMaximumValue = 1.0
	defaultThumbSide    = 32.0
)

// TrackingState is the touch-tracking state of a SliderModel
type TrackingState int

const (
	// Idle means no drag is in progress
	Idle TrackingState = iota

	// Dragging means a touch began on the thumb and hasn't ended yet
	Dragging
)

func (s TrackingState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return fmt.Sprintf("TrackingState(%d)", int(s))
	}
}

// Value is the slider's current position in value space
type Value struct {
	X float64
	Y float64
}

// Layout holds the derived rectangles a presentation layer needs to draw the slider
type Layout struct {
	Thumb  Rect
	TrackX Rect
	TrackY Rect
}

// dragSession exists only between a captured BeginTouch and the matching EndTouch
type dragSession struct {
	previous    Point
	active      bool
	highlighted bool
}

// SliderModel owns a two-axis bounded value and turns pointer input into value changes.
// It is not safe for concurrent use: whoever dispatches touch events must own it.
type SliderModel struct {
	logger *zap.SugaredLogger

	rangeX    Range
	rangeY    Range
	value     Value
	quantizer Quantizer

	trackSize Size
	thumbSide float64

	session dragSession

	valueChangeConsumers []func(Value)
}

// NewSliderModel creates a model with [-1, 1] on both axes, a centered value,
// a 32px thumb, no quantization and an empty track
func NewSliderModel(logger *zap.SugaredLogger) *SliderModel {
	logger = logger.Named("model")

	m := &SliderModel{
		logger:               logger,
		rangeX:               Range{minimum: defaultMinimumValue, maximum: defaultMaximumValue},
		rangeY:               Range{minimum: defaultMinimumValue, maximum: defaultMaximumValue},
		thumbSide:            defaultThumbSide,
		valueChangeConsumers: []func(Value){},
	}

	logger.Debug("Created slider model instance")

	return m
}

// SubscribeToValueChanges registers f to be called synchronously, from within the
// triggering call, every time the model reports a value change
func (m *SliderModel) SubscribeToValueChanges(f func(Value)) {
	m.valueChangeConsumers = append(m.valueChangeConsumers, f)
}

// Value returns the current value
func (m *SliderModel) Value() Value {
	return m.value
}

// SetValue moves the slider programmatically. Each axis is clamped to its range.
// No value change is reported, matching a control's programmatic setter.
func (m *SliderModel) SetValue(v Value) {
	m.value = Value{X: m.rangeX.Clamp(v.X), Y: m.rangeY.Clamp(v.Y)}
}

// RangeX returns the X axis bounds
func (m *SliderModel) RangeX() Range {
	return m.rangeX
}

// RangeY returns the Y axis bounds
func (m *SliderModel) RangeY() Range {
	return m.rangeY
}

// SetMinimumX changes the lower X bound, which may not exceed the current upper X bound
func (m *SliderModel) SetMinimumX(minimum float64) error {
	return m.setAxisBounds(&m.rangeX, "x", minimum, m.rangeX.maximum)
}

// SetMaximumX changes the upper X bound, which may not go below the current lower X bound
func (m *SliderModel) SetMaximumX(maximum float64) error {
	return m.setAxisBounds(&m.rangeX, "x", m.rangeX.minimum, maximum)
}

// SetMinimumY changes the lower Y bound, which may not exceed the current upper Y bound
func (m *SliderModel) SetMinimumY(minimum float64) error {
	return m.setAxisBounds(&m.rangeY, "y", minimum, m.rangeY.maximum)
}

// SetMaximumY changes the upper Y bound, which may not go below the current lower Y bound
func (m *SliderModel) SetMaximumY(maximum float64) error {
	return m.setAxisBounds(&m.rangeY, "y", m.rangeY.minimum, maximum)
}

// SetRangeX replaces both X bounds at once
func (m *SliderModel) SetRangeX(minimum float64, maximum float64) error {
	return m.setAxisBounds(&m.rangeX, "x", minimum, maximum)
}

// SetRangeY replaces both Y bounds at once
func (m *SliderModel) SetRangeY(minimum float64, maximum float64) error {
	return m.setAxisBounds(&m.rangeY, "y", minimum, maximum)
}

func (m *SliderModel) setAxisBounds(r *Range, axis string, minimum float64, maximum float64) error {
	if err := r.SetBounds(minimum, maximum); err != nil {
		m.logger.Debugw("Rejected axis bounds",
			"axis", axis,
			"minimum", minimum,
			"maximum", maximum,
			"current", r.String())

		return fmt.Errorf("axis %s: %w", axis, err)
	}

	// bounds moved, so the stored value may have fallen outside them
	m.SetValue(m.value)

	return nil
}

// Step returns the quantization step and whether quantization is enabled
func (m *SliderModel) Step() (float64, bool) {
	return m.quantizer.Step()
}

// SetStep enables quantization with the given step, rejecting non-positive steps
func (m *SliderModel) SetStep(step float64) error {
	q, err := NewQuantizer(step)
	if err != nil {
		m.logger.Debugw("Rejected step value", "step", step)
		return fmt.Errorf("set step: %w", err)
	}

	m.quantizer = q

	return nil
}

// ClearStep disables quantization
func (m *SliderModel) ClearStep() {
	m.quantizer = Quantizer{}
}

// TrackSize returns the track extent in pixels
func (m *SliderModel) TrackSize() Size {
	return m.trackSize
}

// SetTrackSize sets the track extent in pixels
func (m *SliderModel) SetTrackSize(size Size) error {
	if !validTrackSize(size) {
		return fmt.Errorf("set track size %vx%v: %w", size.Width, size.Height, ErrInvalidGeometry)
	}

	m.trackSize = size

	return nil
}

func validTrackSize(size Size) bool {
	return util.Finite(size.Width) && util.Finite(size.Height) && size.Width >= 0 && size.Height >= 0
}

func validThumbSide(side float64) bool {
	return util.Finite(side) && side > 0
}

// ThumbSide returns the thumb's side length in pixels
func (m *SliderModel) ThumbSide() float64 {
	return m.thumbSide
}

// SetThumbSide sets the thumb's side length in pixels
func (m *SliderModel) SetThumbSide(side float64) error {
	if !validThumbSide(side) {
		return fmt.Errorf("set thumb side %v: %w", side, ErrInvalidGeometry)
	}

	m.thumbSide = side

	return nil
}

// State returns the current tracking state
func (m *SliderModel) State() TrackingState {
	if m.session.active {
		return Dragging
	}

	return Idle
}

// IsHighlighted reports whether the thumb is currently being touched
func (m *SliderModel) IsHighlighted() bool {
	return m.session.highlighted
}

// PositionForValue returns the thumb's top-left corner for v. The thumb never
// overhangs the track, and an axis whose range is degenerate maps to 0.
func (m *SliderModel) PositionForValue(v Value) Point {
	return Point{
		X: axisPosition(m.trackSize.Width-m.thumbSide, m.rangeX, v.X),
		Y: axisPosition(m.trackSize.Height-m.thumbSide, m.rangeY, v.Y),
	}
}

func axisPosition(available float64, r Range, v float64) float64 {
	if r.Degenerate() || available <= 0 {
		return 0
	}

	return available * (v - r.minimum) / r.Span()
}

// ThumbFrame is the thumb's bounding box at the current value, also used for hit testing
func (m *SliderModel) ThumbFrame() Rect {
	return Rect{
		Origin: m.PositionForValue(m.value),
		Size:   Size{Width: m.thumbSide, Height: m.thumbSide},
	}
}

// Layout returns the thumb frame along with the two hairline tracks crossing the control
func (m *SliderModel) Layout() Layout {
	side := m.thumbSide
	thumb := m.ThumbFrame()

	return Layout{
		Thumb: thumb,
		TrackX: Rect{
			Origin: Point{X: side / 16, Y: thumb.MidY() - side/32},
			Size:   Size{Width: math.Max(0, m.trackSize.Width-side/8), Height: side / 16},
		},
		TrackY: Rect{
			Origin: Point{X: m.trackSize.Width/2 - side/32, Y: side / 16},
			Size:   Size{Width: side / 16, Height: math.Max(0, m.trackSize.Height-side/8)},
		},
	}
}

// BeginTouch starts a drag if p lands on the thumb. It returns whether the touch
// was captured; an uncaptured touch doesn't belong to this control.
func (m *SliderModel) BeginTouch(p Point) bool {
	if m.session.active {
		m.logger.Debugw("Touch began while already dragging, restarting drag", "point", p)
	}

	if !m.ThumbFrame().Contains(p) {
		m.session = dragSession{}
		return false
	}

	m.session = dragSession{
		previous:    p,
		active:      true,
		highlighted: true,
	}

	return true
}

// MoveTouch continues a drag. Each axis moves by the pointer delta scaled from track
// pixels to value units, but only if the result stays inside that axis' bounds -
// an increment that would overshoot is dropped, not clamped. Returns false if no
// drag is in progress.
func (m *SliderModel) MoveTouch(p Point) bool {
	if !m.session.active {
		return false
	}

	delta := p.Sub(m.session.previous)
	m.session.previous = p

	nextX := m.value.X + valueDelta(m.rangeX, delta.X, m.trackSize.Width)
	if m.rangeX.Contains(nextX) {
		m.value.X = nextX
	}

	nextY := m.value.Y + valueDelta(m.rangeY, delta.Y, m.trackSize.Height)
	if m.rangeY.Contains(nextY) {
		m.value.Y = nextY
	}

	// with quantization on, the only report is the snapped one in EndTouch
	if !m.quantizer.Enabled() {
		m.notifyValueChanged()
	}

	return true
}

func valueDelta(r Range, pointerDelta float64, extent float64) float64 {
	if extent <= 0 {
		return 0
	}

	return r.Span() * pointerDelta / extent
}

// EndTouch finishes a drag, snapping to the step grid if quantization is on
func (m *SliderModel) EndTouch() {
	if !m.session.active {
		return
	}

	m.session = dragSession{}

	if !m.quantizer.Enabled() {
		return
	}

	// snapping can land just past a bound that isn't on the grid, so clamp after
	m.SetValue(Value{
		X: m.quantizer.Snap(m.value.X),
		Y: m.quantizer.Snap(m.value.Y),
	})

	m.notifyValueChanged()
}

func (m *SliderModel) notifyValueChanged() {
	for _, consumer := range m.valueChangeConsumers {
		consumer(m.value)
	}
}

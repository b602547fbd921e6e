package crossslider

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestModel returns a default model on a 264x264 track, along with a pointer to
// every value it has reported so far
func newTestModel(t *testing.T) (*SliderModel, *[]Value) {
	m := NewSliderModel(zaptest.NewLogger(t).Sugar())
	require.NoError(t, m.SetTrackSize(Size{Width: 264, Height: 264}))

	reported := []Value{}
	m.SubscribeToValueChanges(func(v Value) {
		reported = append(reported, v)
	})

	return m, &reported
}

func TestSliderModel_Defaults(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, -1.0, m.RangeX().Minimum())
	assert.Equal(t, 1.0, m.RangeX().Maximum())
	assert.Equal(t, -1.0, m.RangeY().Minimum())
	assert.Equal(t, 1.0, m.RangeY().Maximum())
	assert.Equal(t, Value{}, m.Value())
	assert.Equal(t, 32.0, m.ThumbSide())
	assert.Equal(t, Idle, m.State())
	assert.False(t, m.IsHighlighted())

	_, stepped := m.Step()
	assert.False(t, stepped)
}

func TestSliderModel_PositionForValue(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, Point{X: 116, Y: 116}, m.PositionForValue(Value{X: 0, Y: 0}))
	assert.Equal(t, Point{X: 0, Y: 0}, m.PositionForValue(Value{X: -1, Y: -1}))
	assert.Equal(t, Point{X: 232, Y: 232}, m.PositionForValue(Value{X: 1, Y: 1}))
	assert.Equal(t, Point{X: 232, Y: 0}, m.PositionForValue(Value{X: 1, Y: -1}))

	assert.Equal(t, Rect{Origin: Point{X: 116, Y: 116}, Size: Size{Width: 32, Height: 32}}, m.ThumbFrame())
}

func TestSliderModel_PositionForValueMonotonic(t *testing.T) {
	m, _ := newTestModel(t)
	require.NoError(t, m.SetRangeX(-3, 7))
	require.NoError(t, m.SetRangeY(10, 11))

	for _, fixed := range []float64{10, 10.5, 11} {
		previous := m.PositionForValue(Value{X: -3, Y: fixed})

		for x := -3.0; x <= 7.0; x += 0.1 {
			current := m.PositionForValue(Value{X: x, Y: fixed})

			assert.GreaterOrEqual(t, current.X, previous.X, "x=%v", x)
			assert.Equal(t, previous.Y, current.Y)
			previous = current
		}
	}

	for _, fixed := range []float64{-3, 0, 7} {
		previous := m.PositionForValue(Value{X: fixed, Y: 10})

		for y := 10.0; y <= 11.0; y += 0.01 {
			current := m.PositionForValue(Value{X: fixed, Y: y})

			assert.GreaterOrEqual(t, current.Y, previous.Y, "y=%v", y)
			previous = current
		}
	}
}

func TestSliderModel_PositionForValueDegenerate(t *testing.T) {
	m, _ := newTestModel(t)

	// only x is degenerate: x pins to the origin, y still maps
	require.NoError(t, m.SetRangeX(0.5, 0.5))
	assert.Equal(t, Point{X: 0, Y: 232}, m.PositionForValue(Value{X: 0.5, Y: 1}))

	// only y is degenerate
	require.NoError(t, m.SetRangeX(-1, 1))
	require.NoError(t, m.SetRangeY(2, 2))
	assert.Equal(t, Point{X: 116, Y: 0}, m.PositionForValue(Value{X: 0, Y: 2}))

	// both
	require.NoError(t, m.SetRangeX(0, 0))
	assert.Equal(t, Point{}, m.PositionForValue(Value{}))
}

func TestSliderModel_PositionForValueSmallTrack(t *testing.T) {
	m, _ := newTestModel(t)
	require.NoError(t, m.SetTrackSize(Size{Width: 20, Height: 20}))

	// a track narrower than the thumb leaves no room to move
	assert.Equal(t, Point{}, m.PositionForValue(Value{X: 1, Y: 1}))
}

func TestSliderModel_BeginTouchOutsideThumb(t *testing.T) {
	m, reported := newTestModel(t)

	for _, p := range []Point{{X: 10, Y: 10}, {X: 148, Y: 120}, {X: 120, Y: 148}, {X: 115.9, Y: 120}} {
		captured := m.BeginTouch(p)

		assert.False(t, captured, "point %v", p)
		assert.Equal(t, Idle, m.State())
		assert.False(t, m.IsHighlighted())
	}

	assert.Empty(t, *reported)
}

func TestSliderModel_BeginTouchOnThumb(t *testing.T) {
	m, reported := newTestModel(t)

	for _, p := range []Point{{X: 116, Y: 116}, {X: 130, Y: 130}, {X: 147.9, Y: 147.9}} {
		captured := m.BeginTouch(p)

		assert.True(t, captured, "point %v", p)
		assert.Equal(t, Dragging, m.State())
		assert.True(t, m.IsHighlighted())

		m.EndTouch()
		assert.Equal(t, Idle, m.State())
		assert.False(t, m.IsHighlighted())
	}

	// no step, no moves: nothing to report
	assert.Empty(t, *reported)
}

func TestSliderModel_Drag(t *testing.T) {
	m, reported := newTestModel(t)

	require.True(t, m.BeginTouch(Point{X: 120, Y: 120}))

	// 33px of a 264px track over a span of 2 is 0.25
	require.True(t, m.MoveTouch(Point{X: 153, Y: 120}))
	assert.InDelta(t, 0.25, m.Value().X, 1e-12)
	assert.Equal(t, 0.0, m.Value().Y)

	require.True(t, m.MoveTouch(Point{X: 153, Y: 87}))
	assert.InDelta(t, 0.25, m.Value().X, 1e-12)
	assert.InDelta(t, -0.25, m.Value().Y, 1e-12)

	m.EndTouch()

	require.Len(t, *reported, 2)
	assert.InDelta(t, 0.25, (*reported)[0].X, 1e-12)
	assert.InDelta(t, -0.25, (*reported)[1].Y, 1e-12)
	assert.Equal(t, m.Value(), (*reported)[1])
}

func TestSliderModel_DragStickyAtEdge(t *testing.T) {
	m, reported := newTestModel(t)
	m.SetValue(Value{X: 0.9, Y: 0})

	start := m.ThumbFrame().Origin
	grab := Point{X: start.X + 5, Y: start.Y + 5}
	require.True(t, m.BeginTouch(grab))

	// 40px would take x to ~1.2, past the maximum of 1.0
	require.True(t, m.MoveTouch(Point{X: grab.X + 40, Y: grab.Y}))
	assert.Equal(t, 0.9, m.Value().X)

	// the refused increment still moved the reference point, so moving back
	// from there is a full step backwards
	require.True(t, m.MoveTouch(grab))
	assert.InDelta(t, 0.9-80.0/264.0, m.Value().X, 1e-12)

	// notifications keep coming even when an increment is refused
	assert.Len(t, *reported, 2)
	assert.Equal(t, 0.9, (*reported)[0].X)
}

func TestSliderModel_MoveAndEndWhileIdle(t *testing.T) {
	m, reported := newTestModel(t)

	assert.False(t, m.MoveTouch(Point{X: 200, Y: 200}))
	m.EndTouch()

	assert.Equal(t, Value{}, m.Value())
	assert.Empty(t, *reported)

	// a missed begin doesn't start tracking either
	require.False(t, m.BeginTouch(Point{X: 0, Y: 0}))
	assert.False(t, m.MoveTouch(Point{X: 50, Y: 50}))
	assert.Equal(t, Value{}, m.Value())
}

func TestSliderModel_QuantizedDrag(t *testing.T) {
	m, reported := newTestModel(t)
	require.NoError(t, m.SetStep(0.25))

	require.True(t, m.BeginTouch(Point{X: 120, Y: 120}))

	// 0.37 worth of pointer travel on x
	require.True(t, m.MoveTouch(Point{X: 120 + 0.37*132, Y: 120}))
	assert.InDelta(t, 0.37, m.Value().X, 1e-12)

	// no reports mid-drag when snapping
	assert.Empty(t, *reported)

	m.EndTouch()

	require.Len(t, *reported, 1)
	assert.InDelta(t, 0.25, (*reported)[0].X, 1e-12)
	assert.Equal(t, 0.0, (*reported)[0].Y)
	assert.Equal(t, m.Value(), (*reported)[0])
	assert.False(t, m.IsHighlighted())
}

func TestSliderModel_QuantizedSnapBoundaries(t *testing.T) {
	type testCase struct {
		preSnap  float64
		expected float64
	}

	testCases := map[string]testCase{
		"low-half":  {preSnap: 0.125, expected: 0.25},
		"high-half": {preSnap: 0.375, expected: 0.5},
		"negative":  {preSnap: -0.125, expected: -0.25},
	}

	for testName, testCase := range testCases {
		t.Run(testName, func(t *testing.T) {
			m, reported := newTestModel(t)
			require.NoError(t, m.SetStep(0.25))
			m.SetValue(Value{X: testCase.preSnap, Y: testCase.preSnap})

			grab := m.ThumbFrame().Origin
			require.True(t, m.BeginTouch(grab))
			m.EndTouch()

			require.Len(t, *reported, 1)
			assert.Equal(t, testCase.expected, m.Value().X)
			assert.Equal(t, testCase.expected, m.Value().Y)
		})
	}
}

func TestSliderModel_SnapStaysInBounds(t *testing.T) {
	m, reported := newTestModel(t)
	require.NoError(t, m.SetMaximumX(0.9))
	require.NoError(t, m.SetStep(0.25))
	m.SetValue(Value{X: 0.88, Y: 0})

	require.True(t, m.BeginTouch(m.ThumbFrame().Origin))
	m.EndTouch()

	// 0.88 snaps to 1.0, which is past the maximum
	require.Len(t, *reported, 1)
	assert.Equal(t, 0.9, m.Value().X)
}

func TestSliderModel_SetBoundsValidation(t *testing.T) {
	type testCase struct {
		apply func(m *SliderModel) error
	}

	testCases := map[string]testCase{
		"minimum-x-above-maximum": {apply: func(m *SliderModel) error { return m.SetMinimumX(2.0) }},
		"maximum-x-below-minimum": {apply: func(m *SliderModel) error { return m.SetMaximumX(-2.0) }},
		"minimum-y-above-maximum": {apply: func(m *SliderModel) error { return m.SetMinimumY(1.5) }},
		"maximum-y-below-minimum": {apply: func(m *SliderModel) error { return m.SetMaximumY(-1.5) }},
		"range-x-inverted":        {apply: func(m *SliderModel) error { return m.SetRangeX(3, 2) }},
	}

	for testName, testCase := range testCases {
		t.Run(testName, func(t *testing.T) {
			m, _ := newTestModel(t)
			m.SetValue(Value{X: 0.5, Y: -0.5})

			err := testCase.apply(m)

			assert.ErrorIs(t, err, ErrInvalidRange)
			assert.Equal(t, -1.0, m.RangeX().Minimum())
			assert.Equal(t, 1.0, m.RangeX().Maximum())
			assert.Equal(t, -1.0, m.RangeY().Minimum())
			assert.Equal(t, 1.0, m.RangeY().Maximum())
			assert.Equal(t, Value{X: 0.5, Y: -0.5}, m.Value())
		})
	}
}

func TestSliderModel_BoundsChangeReclamps(t *testing.T) {
	m, reported := newTestModel(t)
	m.SetValue(Value{X: 0.8, Y: -0.8})

	require.NoError(t, m.SetMaximumX(0.5))
	require.NoError(t, m.SetMinimumY(-0.25))
	assert.Equal(t, Value{X: 0.5, Y: -0.25}, m.Value())

	// moving both bounds past the old maximum needs the combined setter
	require.NoError(t, m.SetRangeX(2, 3))
	assert.Equal(t, 2.0, m.Value().X)

	// configuration changes aren't reported as value changes
	assert.Empty(t, *reported)
}

func TestSliderModel_SetValueClamps(t *testing.T) {
	m, _ := newTestModel(t)

	m.SetValue(Value{X: 5, Y: -5})
	assert.Equal(t, Value{X: 1, Y: -1}, m.Value())

	m.SetValue(Value{X: math.NaN(), Y: math.Inf(1)})
	assert.Equal(t, Value{X: -1, Y: 1}, m.Value())
}

func TestSliderModel_StepConfiguration(t *testing.T) {
	m, _ := newTestModel(t)

	assert.ErrorIs(t, m.SetStep(0), ErrInvalidStep)
	assert.ErrorIs(t, m.SetStep(-1), ErrInvalidStep)

	_, stepped := m.Step()
	assert.False(t, stepped)

	require.NoError(t, m.SetStep(0.1))
	step, stepped := m.Step()
	assert.True(t, stepped)
	assert.Equal(t, 0.1, step)

	// a rejected step leaves the previous one in place
	assert.ErrorIs(t, m.SetStep(-0.1), ErrInvalidStep)
	step, _ = m.Step()
	assert.Equal(t, 0.1, step)

	m.ClearStep()
	_, stepped = m.Step()
	assert.False(t, stepped)
}

func TestSliderModel_GeometryValidation(t *testing.T) {
	m, _ := newTestModel(t)

	assert.ErrorIs(t, m.SetTrackSize(Size{Width: -1, Height: 10}), ErrInvalidGeometry)
	assert.ErrorIs(t, m.SetTrackSize(Size{Width: math.NaN(), Height: 10}), ErrInvalidGeometry)
	assert.ErrorIs(t, m.SetTrackSize(Size{Width: 10, Height: math.Inf(1)}), ErrInvalidGeometry)
	assert.ErrorIs(t, m.SetThumbSide(0), ErrInvalidGeometry)
	assert.ErrorIs(t, m.SetThumbSide(math.NaN()), ErrInvalidGeometry)
	assert.Equal(t, Size{Width: 264, Height: 264}, m.TrackSize())
	assert.Equal(t, 32.0, m.ThumbSide())
}

func TestSliderModel_ZeroTrackMovesNothing(t *testing.T) {
	m, reported := newTestModel(t)
	require.NoError(t, m.SetTrackSize(Size{}))

	require.True(t, m.BeginTouch(Point{X: 1, Y: 1}))
	require.True(t, m.MoveTouch(Point{X: 100, Y: 100}))

	assert.Equal(t, Value{}, m.Value())
	assert.Len(t, *reported, 1)
}

func TestSliderModel_Layout(t *testing.T) {
	m, _ := newTestModel(t)

	layout := m.Layout()

	assert.Equal(t, m.ThumbFrame(), layout.Thumb)
	assert.Equal(t, Rect{Origin: Point{X: 2, Y: 131}, Size: Size{Width: 260, Height: 2}}, layout.TrackX)
	assert.Equal(t, Rect{Origin: Point{X: 131, Y: 2}, Size: Size{Width: 2, Height: 260}}, layout.TrackY)
}

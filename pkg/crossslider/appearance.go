package crossslider

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	defaultCurvaceousness = 1.0
	defaultTrackTint      = "#e6e6e6"
	defaultThumbTint      = "#ffffff"
	defaultStrokeTint     = "#808080"
	defaultStrokeWidth    = 0.5

	// the thumb is drawn this far inside its frame on every side
	thumbInset = 2.0
)

// Appearance carries rendering hints for whoever draws the slider. The model never reads it.
type Appearance struct {
	curvaceousness float64

	TrackTint   colorful.Color
	ThumbTint   colorful.Color
	StrokeTint  colorful.Color
	StrokeWidth float64
}

// NewAppearance returns round thumbs, a light gray track and a white thumb
func NewAppearance() Appearance {
	a := Appearance{StrokeWidth: defaultStrokeWidth}
	a.SetCurvaceousness(defaultCurvaceousness)

	// these are constants, they parse
	a.TrackTint, _ = colorful.Hex(defaultTrackTint)
	a.ThumbTint, _ = colorful.Hex(defaultThumbTint)
	a.StrokeTint, _ = colorful.Hex(defaultStrokeTint)

	return a
}

// Curvaceousness goes from 0.0 for square corners to 1.0 for fully round ones
func (a Appearance) Curvaceousness() float64 {
	return a.curvaceousness
}

// SetCurvaceousness clamps c into [0, 1]
func (a *Appearance) SetCurvaceousness(c float64) {
	switch {
	case c < 0 || math.IsNaN(c):
		a.curvaceousness = 0
	case c > 1:
		a.curvaceousness = 1
	default:
		a.curvaceousness = c
	}
}

// SetTrackTintHex parses a "#rrggbb" color for the track
func (a *Appearance) SetTrackTintHex(hex string) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("parse track tint %q: %w", hex, err)
	}

	a.TrackTint = c

	return nil
}

// SetThumbTintHex parses a "#rrggbb" color for the thumb
func (a *Appearance) SetThumbTintHex(hex string) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("parse thumb tint %q: %w", hex, err)
	}

	a.ThumbTint = c

	return nil
}

// CornerRadius is the rounding to apply when drawing r
func (a Appearance) CornerRadius(r Rect) float64 {
	return r.Size.Height * a.curvaceousness / 2
}

// ThumbShape is the rectangle the thumb is actually painted in, given its frame
func (a Appearance) ThumbShape(frame Rect) Rect {
	return frame.Inset(thumbInset, thumbInset)
}

// HighlightTint is the thumb color while it's being touched: the thumb tint
// blended 10% towards black
func (a Appearance) HighlightTint() colorful.Color {
	return a.ThumbTint.BlendRgb(colorful.Color{}, 0.1).Clamped()
}

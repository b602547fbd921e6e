package crossslider

import (
	"go.uber.org/zap"
)

// Frame is everything a drawing layer needs to render the slider at one point in time
type Frame struct {
	Layout      Layout
	Highlighted bool
	Value       Value
	Appearance  Appearance
}

// Presenter receives a fresh Frame whenever the slider may need redrawing
type Presenter interface {
	Present(frame Frame)
}

// LogPresenter stands in for a drawing layer by logging frames
type LogPresenter struct {
	logger  *zap.SugaredLogger
	verbose bool
}

// NewLogPresenter creates a LogPresenter. Frames are only logged in verbose mode.
func NewLogPresenter(logger *zap.SugaredLogger, verbose bool) *LogPresenter {
	return &LogPresenter{
		logger:  logger.Named("presenter"),
		verbose: verbose,
	}
}

// Present logs the thumb's shape and tint as they'd be drawn
func (lp *LogPresenter) Present(frame Frame) {
	if !lp.verbose {
		return
	}

	shape := frame.Appearance.ThumbShape(frame.Layout.Thumb)

	tint := frame.Appearance.ThumbTint
	if frame.Highlighted {
		tint = frame.Appearance.HighlightTint()
	}

	lp.logger.Debugw("Frame",
		"thumb", shape,
		"cornerRadius", frame.Appearance.CornerRadius(shape),
		"thumbTint", tint.Hex(),
		"trackX", frame.Layout.TrackX,
		"trackY", frame.Layout.TrackY,
		"highlighted", frame.Highlighted,
		"value", frame.Value)
}

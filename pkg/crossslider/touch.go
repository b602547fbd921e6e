package crossslider

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/thoas/go-funk"
)

// TouchSource is anything that can deliver pointer events for the slider
type TouchSource interface {
	Start() error
	Stop()
	SubscribeToTouchEvents() chan TouchEvent
}

// TouchKind says which phase of a gesture a TouchEvent belongs to
type TouchKind int

const (
	// TouchDown is a pointer going down
	TouchDown TouchKind = iota

	// TouchMove is a pointer moving while down
	TouchMove

	// TouchUp is a pointer lifting
	TouchUp
)

func (k TouchKind) String() string {
	switch k {
	case TouchDown:
		return "down"
	case TouchMove:
		return "move"
	case TouchUp:
		return "up"
	default:
		return fmt.Sprintf("TouchKind(%d)", int(k))
	}
}

// TouchEvent represents a single pointer event captured by a touch source
type TouchEvent struct {
	Kind  TouchKind
	Point Point
}

const touchNumber = `-?\d+(?:\.\d+)?`

// "down 12 40", "move 13.5 41", "up", optionally CRLF terminated
var expectedTouchLinePattern = regexp.MustCompile(
	`^(?:(down|move) (` + touchNumber + `) (` + touchNumber + `)|(up))\r?\n?$`)

// parseTouchLine turns one protocol line into an event. Anything that doesn't
// look like a touch line is reported as not ok and should be ignored.
func parseTouchLine(line string) (TouchEvent, bool) {
	match := expectedTouchLinePattern.FindStringSubmatch(line)
	if match == nil {
		return TouchEvent{}, false
	}

	if match[4] == "up" {
		return TouchEvent{Kind: TouchUp}, true
	}

	// the pattern guarantees these parse
	x, _ := strconv.ParseFloat(match[2], 64)
	y, _ := strconv.ParseFloat(match[3], 64)

	kind := TouchMove
	if match[1] == "down" {
		kind = TouchDown
	}

	return TouchEvent{Kind: kind, Point: Point{X: x, Y: y}}, true
}

// parseTouchPacket parses every well-formed line of a multi-line payload
func parseTouchPacket(packet string) []TouchEvent {
	lines := funk.FilterString(strings.Split(packet, "\n"), func(s string) bool {
		return strings.TrimSpace(s) != ""
	})

	events := []TouchEvent{}
	for _, line := range lines {
		if event, ok := parseTouchLine(line); ok {
			events = append(events, event)
		}
	}

	return events
}

// formatValueLine is what gets written back to a writable source on every value change
func formatValueLine(v Value) string {
	return fmt.Sprintf("value %s %s\n",
		strconv.FormatFloat(v.X, 'f', -1, 64),
		strconv.FormatFloat(v.Y, 'f', -1, 64))
}

package crossslider

import "fmt"

// Point is a location in track pixel space. Y grows downwards.
type Point struct {
	X float64
	Y float64
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

// Size is a width/height pair
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle given by its top-left corner and size
type Rect struct {
	Origin Point
	Size   Size
}

// MinX is the left edge
func (r Rect) MinX() float64 { return r.Origin.X }

// MinY is the top edge
func (r Rect) MinY() float64 { return r.Origin.Y }

// MaxX is the right edge
func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }

// MaxY is the bottom edge
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

// MidX is the horizontal center
func (r Rect) MidX() float64 { return r.Origin.X + r.Size.Width/2 }

// MidY is the vertical center
func (r Rect) MidY() float64 { return r.Origin.Y + r.Size.Height/2 }

// Contains reports whether p is inside r. Like image.Rectangle, the top and left
// edges are inside and the bottom and right edges are not.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX() && p.X < r.MaxX() &&
		p.Y >= r.MinY() && p.Y < r.MaxY()
}

// Inset shrinks r by dx on the left and right, and dy on the top and bottom
func (r Rect) Inset(dx float64, dy float64) Rect {
	return Rect{
		Origin: Point{X: r.Origin.X + dx, Y: r.Origin.Y + dy},
		Size:   Size{Width: r.Size.Width - 2*dx, Height: r.Size.Height - 2*dy},
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("{%v %vx%v}", r.Origin, r.Size.Width, r.Size.Height)
}

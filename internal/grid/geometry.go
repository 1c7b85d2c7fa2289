package grid

// Point is a pointer position in front-end coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned region. Zero means unknown.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Expand grows r by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{
		Left:   r.Left - pad,
		Top:    r.Top - pad,
		Right:  r.Right + pad,
		Bottom: r.Bottom + pad,
	}
}

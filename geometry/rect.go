package geometry

// Rect represents an axis-aligned rectangle.
type Rect struct {
	Min, Max Point
}

// RectFromCorners builds a normalized rectangle from two opposite corners
// in any order.
func RectFromCorners(a, b Point) Rect {
	return Rect{
		Min: Point{X: Min(a.X, b.X), Y: Min(a.Y, b.Y)},
		Max: Point{X: Max(a.X, b.X), Y: Max(a.Y, b.Y)},
	}
}

// RectFromSize builds a rectangle from a top-left corner and dimensions.
func RectFromSize(topLeft Point, width, height float64) Rect {
	return Rect{Min: topLeft, Max: Point{X: topLeft.X + width, Y: topLeft.Y + height}}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Contains checks if a point is inside the rectangle (closed min edge,
// open max edge).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X &&
		p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Intersects reports whether two rectangles overlap. The test uses open
// intervals on both sides, so rectangles that merely share an edge do not
// intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X < o.Max.X && r.Max.X > o.Min.X &&
		r.Min.Y < o.Max.Y && r.Max.Y > o.Min.Y
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Point{X: Min(r.Min.X, o.Min.X), Y: Min(r.Min.Y, o.Min.Y)},
		Max: Point{X: Max(r.Max.X, o.Max.X), Y: Max(r.Max.Y, o.Max.Y)},
	}
}

// Expand grows the rectangle by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{
		Min: Point{X: r.Min.X - pad, Y: r.Min.Y - pad},
		Max: Point{X: r.Max.X + pad, Y: r.Max.Y + pad},
	}
}

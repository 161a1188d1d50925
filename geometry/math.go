// Package geometry contains the float64 2D primitives used throughout the
// proofcanvas engine: points, rectangles, and Bézier evaluation.
package geometry

import "math"

// Point represents a 2D coordinate, in either canvas or screen space.
type Point struct {
	X, Y float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p − q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p scaled by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Abs returns the absolute value of x.
func Abs(x float64) float64 {
	return math.Abs(x)
}

// Min returns the minimum of two values.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two values.
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Clamp limits x to the range [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// IsHorizontal returns true if the segment from p to q is more horizontal
// than vertical.
func IsHorizontal(p, q Point) bool {
	return Abs(q.X-p.X) > Abs(q.Y-p.Y)
}

package model

import "math"

// Point is a position in some coordinate space, usually device space.
type Point struct {
	X, Y float64
}

// Distance returns the length of the segment from p to q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Matrix holds the six significant entries [a b c d e f] of a 3×3 affine
// transformation matrix.
type Matrix [6]float64

func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// IsIdentity reports whether m leaves every point where it is.
func (m Matrix) IsIdentity() bool { return m == Identity() }

// Transform maps p through m.
func (m Matrix) Transform(p Point) Point {
	a, b, c, d, e, f := m[0], m[1], m[2], m[3], m[4], m[5]
	return Point{X: a*p.X + c*p.Y + e, Y: b*p.X + d*p.Y + f}
}

// Multiply returns the product m × n, the transformation that applies m
// and then n.
func (m Matrix) Multiply(n Matrix) Matrix {
	var r Matrix
	r[0] = m[0]*n[0] + m[1]*n[2]
	r[1] = m[0]*n[1] + m[1]*n[3]
	r[2] = m[2]*n[0] + m[3]*n[2]
	r[3] = m[2]*n[1] + m[3]*n[3]
	r[4] = m[4]*n[0] + m[5]*n[2] + n[4]
	r[5] = m[4]*n[1] + m[5]*n[3] + n[5]
	return r
}

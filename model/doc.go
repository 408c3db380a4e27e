// Package model holds the page geometry shared by the graphics state and
// text extraction: points in user space and the affine matrices of the
// PDF imaging model.
//
// A [Matrix] [a b c d e f] maps (x, y) to (a*x + c*y + e, b*x + d*y + f).
// Matrices compose left to right, so m.Multiply(n) applies m first:
//
//	trm := model.Translate(72, 700).Multiply(ctm)
//	p := trm.Transform(model.Point{})
package model

package data

import "math"

// Contains data of a Point Cloud Point, namely X,Y,Z coords and
// R,G,B color components
type Point struct {
	X float64
	Y float64
	Z float64
	R uint8
	G uint8
	B uint8
}

// Builds a new Point from the given coordinates and colors values
func NewPoint(X, Y, Z float64, R, G, B uint8) Point {
	return Point{
		X: X,
		Y: Y,
		Z: Z,
		R: R,
		G: G,
		B: B,
	}
}

// Reports whether none of the coordinates is NaN or infinite
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// Returns the squared euclidean distance between two points
func (p Point) SquaredDistance(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// Returns the squared distance between the projections of the two points on the horizontal plane
func (p Point) SquaredPlanimetricDistance(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

package engine

import "math"

// Vec is an integer 2D grid coordinate or velocity vector.
type Vec struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// IsZero reports whether both components are zero.
func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Length returns the Euclidean magnitude of v.
func (v Vec) Length() float64 {
	return math.Sqrt(float64(v.X*v.X + v.Y*v.Y))
}

// Dist returns the Euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 {
	return v.Sub(o).Length()
}

// Dot returns the dot product of v and o.
func (v Vec) Dot(o Vec) float64 {
	return float64(v.X*o.X + v.Y*o.Y)
}

package mathutil

import "math"

// Vec2 holds texture coordinates and their screen-space derivatives.
type Vec2 [2]float64

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a[0] + b[0], a[1] + b[1]}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a[0] - b[0], a[1] - b[1]}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}

func (v Vec2) Len() float64 {
	return math.Hypot(v[0], v[1])
}

// Lerp returns a + (b-a)*t.
func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}

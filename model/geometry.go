package model

import "math"

// Point is a tile coordinate on the map.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DistanceTo returns the Euclidean distance in tiles.
func (p Point) DistanceTo(o Point) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Towards returns the point dist tiles from p in the direction of o.
// If o is closer than dist, o itself is returned.
func (p Point) Towards(o Point, dist float64) Point {
	d := p.DistanceTo(o)
	if d <= dist || d == 0 {
		return o
	}
	t := dist / d
	return Point{
		X: p.X + int(math.Round(float64(o.X-p.X)*t)),
		Y: p.Y + int(math.Round(float64(o.Y-p.Y)*t)),
	}
}

// Centroid returns the rounded mean of the points, or false for an empty slice.
func Centroid(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	sumX, sumY := 0, 0
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return Point{
		X: int(math.Round(float64(sumX) / n)),
		Y: int(math.Round(float64(sumY) / n)),
	}, true
}

// Package geom provides the shared geometric types for point cloud analysis.
package geom

import "github.com/hupe1980/topogo/internal/math32"

// Point3 is a 3D coordinate in float32 precision.
//
// Point storage is owned by the caller; the analysis core only reads it.
type Point3 struct {
	X, Y, Z float32
}

// Add returns the component-wise sum p + q.
func (p Point3) Add(q Point3) Point3 {
	return Point3{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns the component-wise difference p - q.
func (p Point3) Sub(q Point3) Point3 {
	return Point3{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Scale returns p scaled by s.
func (p Point3) Scale(s float32) Point3 {
	return Point3{X: p.X * s, Y: p.Y * s, Z: p.Z * s}
}

// SquaredDistance returns the squared Euclidean distance between a and b.
// Prefer this over Distance in hot paths that only compare magnitudes.
func SquaredDistance(a, b Point3) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z

	return dx*dx + dy*dy + dz*dz
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point3) float32 {
	return math32.Sqrt(SquaredDistance(a, b))
}

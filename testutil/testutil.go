// Package testutil provides deterministic point cloud generators and
// assertion helpers shared by the test suites.
package testutil

import (
	"math/rand"

	"github.com/hupe1980/topogo/geom"
)

// Clusters generates perCluster points around each center, jittered uniformly
// by at most spread per axis. Deterministic for a given seed.
func Clusters(seed int64, centers []geom.Point3, perCluster int, spread float32) []geom.Point3 {
	r := rand.New(rand.NewSource(seed))

	points := make([]geom.Point3, 0, len(centers)*perCluster)
	for _, c := range centers {
		for i := 0; i < perCluster; i++ {
			points = append(points, geom.Point3{
				X: c.X + (r.Float32()*2-1)*spread,
				Y: c.Y + (r.Float32()*2-1)*spread,
				Z: c.Z + (r.Float32()*2-1)*spread,
			})
		}
	}

	return points
}

// LineCloud generates n points on the x axis spaced step apart.
func LineCloud(n int, step float32) []geom.Point3 {
	points := make([]geom.Point3, n)
	for i := range points {
		points[i] = geom.Point3{X: float32(i) * step}
	}

	return points
}

// UniformBox generates n points uniformly inside the axis-aligned box
// [min, max]. Deterministic for a given seed.
func UniformBox(seed int64, n int, min, max geom.Point3) []geom.Point3 {
	r := rand.New(rand.NewSource(seed))

	points := make([]geom.Point3, n)
	for i := range points {
		points[i] = geom.Point3{
			X: min.X + r.Float32()*(max.X-min.X),
			Y: min.Y + r.Float32()*(max.Y-min.Y),
			Z: min.Z + r.Float32()*(max.Z-min.Z),
		}
	}

	return points
}

// SamePartition reports whether two component maps describe the same
// partition of points, ignoring the concrete id values. Component ids carry
// no meaning beyond equality, so tests must compare partitions this way.
func SamePartition(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}

	aToB := make(map[uint32]uint32)
	bToA := make(map[uint32]uint32)
	for i := range a {
		if mapped, ok := aToB[a[i]]; ok {
			if mapped != b[i] {
				return false
			}
		} else {
			aToB[a[i]] = b[i]
		}
		if mapped, ok := bToA[b[i]]; ok {
			if mapped != a[i] {
				return false
			}
		} else {
			bToA[b[i]] = a[i]
		}
	}

	return true
}

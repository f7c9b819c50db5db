// Package distance computes pairwise Euclidean distance matrices on a
// compute device.
//
// The matrix is O(n**2) in both memory and compute, so it is intended for
// landmark-sized point subsets (hundreds to a few thousand points), not the
// full point cloud. Subsampling is the caller's responsibility.
package distance

// Package grid maintains a uniform spatial hash index over a point cloud for
// O(1)-expected neighbor queries.
//
// Each point is assigned a clamped integer grid cell, the point indices are
// sorted by flattened cell id, and a cell-start table maps every cell id to
// its first position in the sorted order. A query visits exactly the points
// whose sorted cell id matches the query cell; the scan ends at the first
// differing cell id, never at a fixed iteration cap.
//
// The index is approximate O(1)-expected, not an exact-kNN structure, and is
// rebuilt from scratch each pass.
package grid

// Package homology computes 0-dimensional persistent homology of a
// thresholded distance graph.
//
// The engine is strictly sequential and host-side: edges are sorted ascending
// by weight (the filtration order) and folded into a disjoint-set forest.
// Every union that joins two components records a persistence pair, every
// component that survives the whole edge stream persists to infinity, and the
// final forest yields a canonical component id per point.
//
// Component ids are canonical root indices in [0, n); they carry no meaning
// beyond equality and grouping, and may differ between otherwise identical
// runs.
package homology

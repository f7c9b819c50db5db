// Package rips extracts the 1-skeleton of a Vietoris-Rips complex: every
// undirected point pair whose distance is at or below a threshold becomes an
// edge.
//
// Extraction runs as one data-parallel dispatch; surviving edges are appended
// to a capped buffer through an atomic counter. Edge order in the buffer is
// unspecified, it depends on scheduling, and downstream consumers must not
// rely on it.
package rips

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/topogo/compute"
	"github.com/hupe1980/topogo/distance"
	"github.com/hupe1980/topogo/internal/math32"
)

// DefaultMaxEdges caps the pre-allocated edge buffer when the caller does not
// choose one.
const DefaultMaxEdges = 2_000_000

// ErrInvalidEpsilon indicates a negative or NaN connectivity threshold.
var ErrInvalidEpsilon = errors.New("rips: epsilon must be non-negative")

// Edge is an undirected pair of point indices with U < V.
//
// The weight is looked up from the distance matrix, not stored redundantly.
// Downstream consumers tolerate duplicate and symmetric pairs regardless.
type Edge struct {
	U, V uint32
}

// Result reports the outcome of one extraction.
//
// When Attempted exceeds Capacity the buffer was capped: Edges holds only the
// Written prefix and callers must branch on Capped (re-run with a smaller
// epsilon, a larger cap, or accept the partial edge set).
type Result struct {
	// Edges is the valid extracted prefix, len(Edges) == Written.
	Edges []Edge

	// Written is the number of edges actually stored.
	Written int

	// Attempted is the true number of pairs that passed the threshold.
	Attempted int

	// Capacity is the pre-allocated maximum.
	Capacity int
}

// Capped reports whether edges were dropped because the buffer filled up.
func (r *Result) Capped() bool {
	return r.Attempted > r.Capacity
}

// Extract emits every pair (i, j), i < j, with distance <= epsilon.
//
// maxEdges <= 0 selects min(n*(n-1)/2, DefaultMaxEdges). Each surviving pair
// reserves a slot via fetch-and-increment; reservations past the cap are
// dropped without writing, so the buffer is never overrun and the true count
// stays observable in Result.Attempted.
func Extract(ctx context.Context, dev compute.Device, m *distance.Matrix, epsilon float32, maxEdges int) (*Result, error) {
	if epsilon < 0 || math32.IsNaN(epsilon) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidEpsilon, epsilon)
	}

	n := m.Dim()
	pairs := n * (n - 1) / 2
	if maxEdges <= 0 {
		maxEdges = DefaultMaxEdges
	}
	if maxEdges > pairs {
		maxEdges = pairs
	}

	res := &Result{Capacity: maxEdges}
	if n < 2 {
		res.Edges = []Edge{}
		return res, nil
	}

	buf := compute.Alloc[Edge](maxEdges)
	edges := buf.Bind()
	data := m.Bind()

	var counter compute.Counter

	// One logical thread per ordered (i, j); the i < j guard considers each
	// unordered pair exactly once.
	if err := dev.Dispatch2D(ctx, n, n, func(i, j int) {
		if i >= j {
			return
		}
		if data[j*n+i] <= epsilon {
			slot := counter.Next()
			if int(slot) < maxEdges {
				edges[slot] = Edge{U: uint32(i), V: uint32(j)}
			}
		}
	}); err != nil {
		return nil, err
	}

	res.Attempted = int(counter.Load())
	res.Written = res.Attempted
	if res.Written > maxEdges {
		res.Written = maxEdges
	}

	host, err := compute.ReadBack(ctx, dev, buf)
	if err != nil {
		return nil, err
	}
	res.Edges = host.Data()[:res.Written]

	return res, nil
}

package homology

import (
	"fmt"
	"sort"

	"github.com/hupe1980/topogo/distance"
	"github.com/hupe1980/topogo/rips"
)

// ErrEdgeOutOfRange indicates an edge referencing a point index outside the
// point set.
type ErrEdgeOutOfRange struct {
	Edge       rips.Edge
	PointCount int
}

func (e *ErrEdgeOutOfRange) Error() string {
	return fmt.Sprintf("homology: edge (%d,%d) references a point outside [0,%d)", e.Edge.U, e.Edge.V, e.PointCount)
}

// ErrMatrixTooSmall indicates a distance matrix smaller than the point set.
type ErrMatrixTooSmall struct {
	Dim        int
	PointCount int
}

func (e *ErrMatrixTooSmall) Error() string {
	return fmt.Sprintf("homology: %dx%d matrix cannot cover %d points", e.Dim, e.Dim, e.PointCount)
}

type weightedEdge struct {
	u, v   uint32
	weight float32
}

// Compute runs the 0-dimensional persistence engine over an extracted edge
// set.
//
// Edge weights are resolved from m, edges are stably sorted ascending by
// weight and folded into a Union-Find forest: each merge records a pair
// (0, weight), each surviving component a pair (0, +Inf), and the final
// forest gives the canonical component id per point. Duplicate and symmetric
// edges are tolerated; they resolve to the same component and are skipped as
// cycle edges.
//
// The component map reflects connectivity through the single epsilon
// threshold the edges were extracted with, not a full multi-scale filtration;
// callers wanting multi-scale structure re-run the pass while sweeping
// epsilon.
//
// Complexity: O(E log E) for the sort plus near-linear Union-Find.
func Compute(edges []rips.Edge, m *distance.HostMatrix, pointCount int) (*Diagram, error) {
	if pointCount < 0 {
		pointCount = 0
	}
	if m.Dim() < pointCount {
		return nil, &ErrMatrixTooSmall{Dim: m.Dim(), PointCount: pointCount}
	}

	// 1. Resolve weights.
	weighted := make([]weightedEdge, 0, len(edges))
	for _, e := range edges {
		if int(e.U) >= pointCount || int(e.V) >= pointCount {
			return nil, &ErrEdgeOutOfRange{Edge: e, PointCount: pointCount}
		}
		weighted = append(weighted, weightedEdge{u: e.U, v: e.V, weight: m.At(int(e.U), int(e.V))})
	}

	// 2. Filtration order: stable ascending by weight, ties broken by the
	// incoming edge order so reruns on the same input stay consistent.
	sort.SliceStable(weighted, func(i, j int) bool {
		return weighted[i].weight < weighted[j].weight
	})

	// 3-4. Fold edges into the forest, one pair per successful merge.
	uf := NewUnionFind(pointCount)
	pairs := make([]Pair, 0, pointCount)
	deaths := make([]float32, pointCount)
	for i := range deaths {
		deaths[i] = Infinity
	}

	for _, e := range weighted {
		absorbed, merged := uf.Union(e.u, e.v)
		if !merged {
			continue
		}
		pairs = append(pairs, Pair{Birth: 0, Death: e.weight})
		deaths[absorbed] = e.weight
	}

	// 5. Survivors persist to infinity.
	for i := 0; i < uf.Components(); i++ {
		pairs = append(pairs, Pair{Birth: 0, Death: Infinity})
	}

	// 6. Canonical component id per point.
	componentMap := make([]uint32, pointCount)
	for i := range componentMap {
		componentMap[i] = uf.Find(uint32(i))
	}

	return &Diagram{
		Pairs:        pairs,
		ComponentMap: componentMap,
		deaths:       deaths,
	}, nil
}

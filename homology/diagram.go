package homology

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/stat"
)

// Infinity is the death value of components that never merge.
var Infinity = float32(math.Inf(1))

// Pair is a 0-dimensional persistence pair.
//
// Birth is always zero (every point is alive at filtration value 0); Death is
// the edge weight at which two previously separate components merged, or
// Infinity for components that survive the whole edge stream.
type Pair struct {
	Birth float32
	Death float32
}

// Infinite reports whether the pair belongs to a surviving component.
func (p Pair) Infinite() bool {
	return math.IsInf(float64(p.Death), 1)
}

// Diagram is the result of one persistence computation.
type Diagram struct {
	// Pairs holds the finite pairs in merge (filtration) order followed by
	// one infinite pair per surviving component.
	Pairs []Pair

	// ComponentMap assigns each point its canonical component root.
	// Ids are meaningful only for equality and grouping.
	ComponentMap []uint32

	// deaths[i] is the filtration value at which point i stopped being a
	// canonical root, Infinity if it never was absorbed.
	deaths []float32
}

// RestoreDiagram reassembles a Diagram from persisted sections, e.g. when
// loading a snapshot. significance may be nil when it was not persisted.
func RestoreDiagram(pairs []Pair, componentMap []uint32, significance []float32) *Diagram {
	return &Diagram{
		Pairs:        pairs,
		ComponentMap: componentMap,
		deaths:       significance,
	}
}

// NumComponents returns the number of components surviving the extracted
// edge set.
func (d *Diagram) NumComponents() int {
	n := 0
	for _, p := range d.Pairs {
		if p.Infinite() {
			n++
		}
	}

	return n
}

// Significance returns a per-point topological significance scalar: the
// death value of the persistence pair rooted at that point, Infinity for
// points whose component survived.
//
// Renderers feed this back onto particles to highlight structurally
// long-lived clusters.
func (d *Diagram) Significance() []float32 {
	out := make([]float32, len(d.deaths))
	copy(out, d.deaths)

	return out
}

// Components groups point indices by canonical component id as Roaring
// bitmaps, supporting fast membership and set operations without O(n)
// rescans.
func (d *Diagram) Components() map[uint32]*roaring.Bitmap {
	out := make(map[uint32]*roaring.Bitmap)
	for i, root := range d.ComponentMap {
		bm, ok := out[root]
		if !ok {
			bm = roaring.New()
			out[root] = bm
		}
		bm.Add(uint32(i))
	}

	return out
}

// Stats summarizes the finite part of the diagram.
type Stats struct {
	// Finite and Infinite count the pairs of each kind.
	Finite   int
	Infinite int

	// MeanDeath, StdDevDeath and MedianDeath describe the finite death
	// distribution; all zero when no finite pairs exist, and StdDevDeath
	// is zero when only one does.
	MeanDeath   float64
	StdDevDeath float64
	MedianDeath float64
}

// Stats computes summary statistics over the finite death values, useful for
// tuning the connectivity threshold between passes.
func (d *Diagram) Stats() Stats {
	var finite []float64
	infinite := 0
	for _, p := range d.Pairs {
		if p.Infinite() {
			infinite++
			continue
		}
		finite = append(finite, float64(p.Death))
	}

	s := Stats{Finite: len(finite), Infinite: infinite}
	if len(finite) == 0 {
		return s
	}

	sort.Float64s(finite)
	s.MeanDeath = stat.Mean(finite, nil)
	if len(finite) > 1 {
		// Sample standard deviation is undefined for one value; report 0
		// rather than NaN.
		s.StdDevDeath = stat.StdDev(finite, nil)
	}
	s.MedianDeath = stat.Quantile(0.5, stat.Empirical, finite, nil)

	return s
}

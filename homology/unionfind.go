package homology

// UnionFind is a disjoint-set forest over point indices [0, n) with union by
// rank and iterative path compression.
//
// It lives for a single persistence computation and is rebuilt from scratch
// each pass; there is no incremental reuse.
type UnionFind struct {
	parent     []uint32
	rank       []uint8
	components int
}

// NewUnionFind creates a forest with every element its own root.
func NewUnionFind(n int) *UnionFind {
	parent := make([]uint32, n)
	for i := range parent {
		parent[i] = uint32(i)
	}

	return &UnionFind{
		parent:     parent,
		rank:       make([]uint8, n),
		components: n,
	}
}

// Find returns the canonical root of x.
func (u *UnionFind) Find(x uint32) uint32 {
	// Path halving: point x at its grandparent while walking up.
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}

	return x
}

// Union merges the components of x and y.
//
// It returns the root that stopped being canonical and true when a merge
// happened, or false when x and y were already connected (a cycle-closing
// edge, topologically inert at degree zero).
func (u *UnionFind) Union(x, y uint32) (absorbed uint32, merged bool) {
	rx, ry := u.Find(x), u.Find(y)
	if rx == ry {
		return 0, false
	}

	// Attach the shallower tree under the deeper root.
	if u.rank[rx] < u.rank[ry] {
		rx, ry = ry, rx
	}
	u.parent[ry] = rx
	if u.rank[rx] == u.rank[ry] {
		u.rank[rx]++
	}
	u.components--

	return ry, true
}

// Components returns the current number of disjoint components.
func (u *UnionFind) Components() int {
	return u.components
}

// Len returns the number of elements in the forest.
func (u *UnionFind) Len() int {
	return len(u.parent)
}

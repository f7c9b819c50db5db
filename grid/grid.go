package grid

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/topogo/compute"
	"github.com/hupe1980/topogo/geom"
	"github.com/hupe1980/topogo/internal/math32"
)

// EmptyCell marks a cell with no points in the cell-start table.
const EmptyCell = uint32(0xFFFFFFFF)

// ErrInvalidCellSize indicates a zero, negative or NaN cell size.
var ErrInvalidCellSize = errors.New("grid: cell size must be positive")

// ErrInvalidResolution indicates a zero grid resolution on some axis.
var ErrInvalidResolution = errors.New("grid: resolution must be positive on every axis")

// Params describes the uniform grid covering the point cloud.
type Params struct {
	// Min is the world-space corner of cell (0,0,0).
	Min geom.Point3

	// CellSize is the edge length of each cubic cell.
	CellSize float32

	// Res is the number of cells along x, y and z.
	Res [3]uint32
}

// Validate rejects malformed grid parameters before any dispatch runs.
func (p Params) Validate() error {
	if !(p.CellSize > 0) { // catches NaN as well
		return fmt.Errorf("%w: got %v", ErrInvalidCellSize, p.CellSize)
	}
	if p.Res[0] == 0 || p.Res[1] == 0 || p.Res[2] == 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidResolution, p.Res)
	}

	return nil
}

// NumCells returns the total number of cells.
func (p Params) NumCells() int {
	return int(p.Res[0]) * int(p.Res[1]) * int(p.Res[2])
}

// CellOf returns the flattened cell id for a world-space position.
// Coordinates outside the grid clamp to the boundary cells, so every point
// maps to a valid id.
func (p Params) CellOf(pt geom.Point3) uint32 {
	d := pt.Sub(p.Min)
	x := uint32(math32.Clamp(math32.Floor(d.X/p.CellSize), 0, float32(p.Res[0]-1)))
	y := uint32(math32.Clamp(math32.Floor(d.Y/p.CellSize), 0, float32(p.Res[1]-1)))
	z := uint32(math32.Clamp(math32.Floor(d.Z/p.CellSize), 0, float32(p.Res[2]-1)))

	return z*p.Res[0]*p.Res[1] + y*p.Res[0] + x
}

// Grid is a built spatial hash index.
//
// sortedIndices holds the point indices grouped by cell id, cellIDs the cell
// id at each sorted position, and cellStart the first sorted position per
// cell id (EmptyCell for unpopulated cells).
type Grid struct {
	params        Params
	sortedIndices []uint32
	cellIDs       []uint32
	cellStart     []uint32
}

// Build constructs the spatial hash index for points.
//
// Cell assignment and the cell-start scan run as data-parallel dispatches on
// dev; the (cellID, pointIndex) pair stream is ordered by the sort primitive
// in between (stability is not required, point order within a cell is
// irrelevant). An empty point set yields a valid grid whose cell-start table
// is entirely EmptyCell.
func Build(ctx context.Context, dev compute.Device, points []geom.Point3, params Params) (*Grid, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := len(points)

	cellIDs := compute.Alloc[uint32](n)
	indices := compute.Alloc[uint32](n)

	ids := cellIDs.Bind()
	idx := indices.Bind()
	if err := dev.Dispatch1D(ctx, n, func(i int) {
		ids[i] = params.CellOf(points[i])
		idx[i] = uint32(i)
	}); err != nil {
		return nil, err
	}

	// Sort primitive: order the pair stream ascending by cell id, applying
	// the same permutation to the point indices.
	slices.SortFunc(idx, func(a, b uint32) int {
		switch {
		case ids[a] < ids[b]:
			return -1
		case ids[a] > ids[b]:
			return 1
		default:
			return 0
		}
	})

	sortedIDs := compute.Alloc[uint32](n)
	sids := sortedIDs.Bind()
	if err := dev.Dispatch1D(ctx, n, func(i int) {
		sids[i] = ids[idx[i]]
	}); err != nil {
		return nil, err
	}

	cellStart := compute.Alloc[uint32](params.NumCells())
	starts := cellStart.Bind()
	if err := dev.Dispatch1D(ctx, params.NumCells(), func(i int) {
		starts[i] = EmptyCell
	}); err != nil {
		return nil, err
	}

	// First-occurrence scan: position i starts a new cell run iff it is the
	// first position or its cell id differs from its predecessor's.
	if err := dev.Dispatch1D(ctx, n, func(i int) {
		if i == 0 || sids[i] != sids[i-1] {
			starts[sids[i]] = uint32(i)
		}
	}); err != nil {
		return nil, err
	}

	hostIdx, err := compute.ReadBack(ctx, dev, indices)
	if err != nil {
		return nil, err
	}
	hostIDs, err := compute.ReadBack(ctx, dev, sortedIDs)
	if err != nil {
		return nil, err
	}
	hostStarts, err := compute.ReadBack(ctx, dev, cellStart)
	if err != nil {
		return nil, err
	}

	return &Grid{
		params:        params,
		sortedIndices: hostIdx.Data(),
		cellIDs:       hostIDs.Data(),
		cellStart:     hostStarts.Data(),
	}, nil
}

// Params returns the grid parameters the index was built with.
func (g *Grid) Params() Params { return g.params }

// Len returns the number of indexed points.
func (g *Grid) Len() int { return len(g.sortedIndices) }

// SortedIndices returns the point indices grouped by cell id.
func (g *Grid) SortedIndices() []uint32 { return g.sortedIndices }

// CellStart returns the cell-start table. Entries equal to EmptyCell mark
// unpopulated cells.
func (g *Grid) CellStart() []uint32 { return g.cellStart }

// CellRange returns the half-open range [start, end) of sorted positions
// belonging to cell. ok is false for empty cells. The end is the first
// position whose cell id differs, the explicit per-cell stop condition.
func (g *Grid) CellRange(cell uint32) (start, end int, ok bool) {
	if int(cell) >= len(g.cellStart) || g.cellStart[cell] == EmptyCell {
		return 0, 0, false
	}

	start = int(g.cellStart[cell])
	end = start
	for end < len(g.cellIDs) && g.cellIDs[end] == cell {
		end++
	}

	return start, end, true
}

// ForEachInCell calls fn with every point index stored in cell.
func (g *Grid) ForEachInCell(cell uint32, fn func(pointIndex uint32)) {
	start, end, ok := g.CellRange(cell)
	if !ok {
		return
	}
	for i := start; i < end; i++ {
		fn(g.sortedIndices[i])
	}
}

// ForEachNeighbor visits every indexed point within radius of q.
//
// points must be the same slice the grid was built from. fn receives the
// point index and the squared distance to q.
func (g *Grid) ForEachNeighbor(points []geom.Point3, q geom.Point3, radius float32, fn func(pointIndex uint32, distSq float32)) {
	if radius <= 0 {
		return
	}

	p := g.params
	cellRadius := int(radius/p.CellSize) + 1

	d := q.Sub(p.Min)
	cx := int(math32.Clamp(math32.Floor(d.X/p.CellSize), 0, float32(p.Res[0]-1)))
	cy := int(math32.Clamp(math32.Floor(d.Y/p.CellSize), 0, float32(p.Res[1]-1)))
	cz := int(math32.Clamp(math32.Floor(d.Z/p.CellSize), 0, float32(p.Res[2]-1)))

	radiusSq := radius * radius

	for dz := -cellRadius; dz <= cellRadius; dz++ {
		z := cz + dz
		if z < 0 || z >= int(p.Res[2]) {
			continue
		}
		for dy := -cellRadius; dy <= cellRadius; dy++ {
			y := cy + dy
			if y < 0 || y >= int(p.Res[1]) {
				continue
			}
			for dx := -cellRadius; dx <= cellRadius; dx++ {
				x := cx + dx
				if x < 0 || x >= int(p.Res[0]) {
					continue
				}

				cell := uint32(z)*p.Res[0]*p.Res[1] + uint32(y)*p.Res[0] + uint32(x)
				g.ForEachInCell(cell, func(pi uint32) {
					distSq := geom.SquaredDistance(points[pi], q)
					if distSq <= radiusSq {
						fn(pi, distSq)
					}
				})
			}
		}
	}
}

// Package topogo computes the topological structure of an evolving point
// cloud in real time.
//
// Each analysis pass derives, for a landmark-sized point subset:
//
//   - a pairwise Euclidean distance matrix (device-resident)
//   - the Rips 1-skeleton at a connectivity threshold epsilon
//   - the 0-dimensional persistence diagram of that edge set
//   - a canonical component id and significance scalar per point
//
// Independently of the analysis chain, a uniform spatial hash grid over the
// same points serves O(1)-expected neighbor queries for simulation.
//
// # Quick start
//
//	dev := compute.NewCPU()
//	an, err := topogo.New(dev, topogo.WithMaxEdges(500_000))
//	if err != nil {
//	    panic(err)
//	}
//
//	res, err := an.Analyze(ctx, points, 1.5)
//	if err != nil {
//	    panic(err)
//	}
//	if res.Truncated {
//	    // Edge buffer was capped: retry with a smaller epsilon or a
//	    // larger cap, or accept the partial result.
//	}
//	for i, id := range res.Diagram.ComponentMap {
//	    assign(points[i], id)
//	}
//
//	g, err := an.BuildGrid(ctx, points, grid.Params{
//	    Min:      geom.Point3{X: -10, Y: -10, Z: -10},
//	    CellSize: 0.5,
//	    Res:      [3]uint32{40, 40, 40},
//	})
//
// Passes are synchronous and carry no state across calls; every buffer is
// pass-scoped. Cost is quadratic in the point count, so callers wanting
// bounded latency subsample to landmarks before invoking Analyze.
//
// Results can be persisted as compact binary snapshots to any
// blobstore.BlobStore (memory, local disk, S3, MinIO); see SaveSnapshot and
// LoadSnapshot.
package topogo

package topogo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/topogo/blobstore"
	"github.com/hupe1980/topogo/compute"
	"github.com/hupe1980/topogo/distance"
	"github.com/hupe1980/topogo/geom"
	"github.com/hupe1980/topogo/grid"
	"github.com/hupe1980/topogo/homology"
	"github.com/hupe1980/topogo/internal/math32"
	"github.com/hupe1980/topogo/resource"
	"github.com/hupe1980/topogo/rips"
	"github.com/hupe1980/topogo/snapshot"
)

// Analyzer runs topological analysis passes over point clouds.
//
// The compute device is injected by the caller, who owns it and its
// lifetime; the analyzer borrows it for the duration of each call. An
// Analyzer is safe for concurrent use: passes share no mutable state.
type Analyzer struct {
	dev  compute.Device
	opts options
}

// New creates an Analyzer on the given compute device.
func New(dev compute.Device, optFns ...Option) (*Analyzer, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}

	return &Analyzer{
		dev:  dev,
		opts: applyOptions(optFns),
	}, nil
}

// Result is the outcome of one analysis pass.
type Result struct {
	// Epsilon is the connectivity threshold the pass ran with.
	Epsilon float32

	// PointCount is the size of the analyzed point set.
	PointCount int

	// Diagram holds the persistence pairs, the component map and per-point
	// significance.
	Diagram *homology.Diagram

	// Edges is the extracted 1-skeleton (the valid prefix when truncated).
	Edges []rips.Edge

	// EdgesWritten, EdgesAttempted and EdgesCapacity describe the edge
	// extraction; when Truncated is set, callers must decide whether to
	// accept the partial result, raise the cap, or lower epsilon.
	EdgesWritten   int
	EdgesAttempted int
	EdgesCapacity  int
	Truncated      bool
}

// Analyze runs one synchronous analysis pass: pairwise distances, Rips edge
// extraction at epsilon, and 0-dimensional persistence.
//
// Cost is O(n**2) in compute and memory, so points should be a landmark
// subset, not the raw cloud. The pass carries no state: calling Analyze
// twice with identical inputs yields the same partition (component ids may
// differ, the grouping does not).
//
// The component map reflects connectivity at the single threshold epsilon;
// the persistence pairs order merges within the extracted edge set. Callers
// wanting multi-scale structure sweep epsilon across passes.
func (a *Analyzer) Analyze(ctx context.Context, points []geom.Point3, epsilon float32) (*Result, error) {
	start := time.Now()

	res, err := a.analyze(ctx, points, epsilon)

	dur := time.Since(start)
	written := 0
	if res != nil {
		written = res.EdgesWritten
	}
	a.opts.metricsCollector.RecordAnalyze(dur, len(points), written, err)
	if res != nil && res.Truncated {
		a.opts.metricsCollector.RecordTruncation(res.EdgesAttempted, res.EdgesCapacity)
	}
	a.opts.logger.LogAnalyze(ctx, len(points), epsilon, res, dur, err)

	return res, err
}

func (a *Analyzer) analyze(ctx context.Context, points []geom.Point3, epsilon float32) (*Result, error) {
	if epsilon < 0 || math32.IsNaN(epsilon) {
		return nil, &ErrInvalidEpsilon{Epsilon: epsilon}
	}

	rc := a.opts.controller
	if err := rc.AcquirePass(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleasePass()

	n := len(points)
	passBytes := a.passBytes(n)
	if !rc.TryAcquireMemory(passBytes) {
		return nil, &ErrResourceExhausted{
			PointCount:    n,
			RequiredBytes: passBytes,
			LimitBytes:    rc.MemoryLimit(),
		}
	}
	defer rc.ReleaseMemory(passBytes)

	m, err := distance.Compute(ctx, a.dev, points)
	if err != nil {
		return nil, fmt.Errorf("topogo: distance matrix: %w", err)
	}

	extracted, err := rips.Extract(ctx, a.dev, m, epsilon, a.opts.maxEdges)
	if err != nil {
		return nil, fmt.Errorf("topogo: edge extraction: %w", err)
	}

	// Completion barrier: the device stages are done and the matrix becomes
	// host-readable before the sequential engine touches it.
	host, err := m.ReadBack(ctx, a.dev)
	if err != nil {
		return nil, fmt.Errorf("topogo: matrix read-back: %w", err)
	}

	diag, err := homology.Compute(extracted.Edges, host, n)
	if err != nil {
		return nil, fmt.Errorf("topogo: persistence: %w", err)
	}

	return &Result{
		Epsilon:        epsilon,
		PointCount:     n,
		Diagram:        diag,
		Edges:          extracted.Edges,
		EdgesWritten:   extracted.Written,
		EdgesAttempted: extracted.Attempted,
		EdgesCapacity:  extracted.Capacity,
		Truncated:      extracted.Capped(),
	}, nil
}

// passBytes estimates the pass-scoped buffer memory for n points: the
// device matrix plus its host copy, and the edge buffer plus its host copy.
func (a *Analyzer) passBytes(n int) int64 {
	maxEdges := a.opts.maxEdges
	if maxEdges <= 0 {
		maxEdges = rips.DefaultMaxEdges
	}
	if pairs := n * (n - 1) / 2; maxEdges > pairs {
		maxEdges = pairs
	}

	return 8*int64(n)*int64(n) + 16*int64(maxEdges)
}

// BuildGrid builds the uniform spatial hash index over points.
//
// The grid path is independent of the analysis chain and shares no data
// with it; both may run concurrently within one pass.
func (a *Analyzer) BuildGrid(ctx context.Context, points []geom.Point3, params grid.Params) (*grid.Grid, error) {
	start := time.Now()

	g, err := grid.Build(ctx, a.dev, points, params)

	a.opts.metricsCollector.RecordGridBuild(time.Since(start), len(points), err)
	a.opts.logger.LogGridBuild(ctx, len(points), params.NumCells(), time.Since(start), err)

	return g, err
}

// SaveSnapshot persists a result to the given blob store.
func (a *Analyzer) SaveSnapshot(ctx context.Context, store blobstore.BlobStore, name string, res *Result) error {
	start := time.Now()

	var buf bytes.Buffer
	w := resource.NewRateLimitedWriter(ctx, &buf, a.opts.controller)

	err := snapshot.Write(w, &snapshot.Analysis{
		Epsilon:        res.Epsilon,
		PointCount:     res.PointCount,
		Pairs:          res.Diagram.Pairs,
		ComponentMap:   res.Diagram.ComponentMap,
		Significance:   res.Diagram.Significance(),
		Edges:          res.Edges,
		EdgesAttempted: res.EdgesAttempted,
		EdgesCapacity:  res.EdgesCapacity,
	}, a.opts.snapshotOptions...)
	if err == nil {
		err = store.Put(ctx, name, buf.Bytes())
	}

	a.opts.metricsCollector.RecordSnapshot(time.Since(start), buf.Len(), err)
	a.opts.logger.LogSnapshot(ctx, "save", name, buf.Len(), err)

	return err
}

// LoadSnapshot restores a previously saved result from the given blob store.
func (a *Analyzer) LoadSnapshot(ctx context.Context, store blobstore.BlobStore, name string) (*Result, error) {
	start := time.Now()

	res, n, err := a.loadSnapshot(ctx, store, name)

	a.opts.metricsCollector.RecordSnapshot(time.Since(start), n, err)
	a.opts.logger.LogSnapshot(ctx, "load", name, n, err)

	return res, err
}

func (a *Analyzer) loadSnapshot(ctx context.Context, store blobstore.BlobStore, name string) (*Result, int, error) {
	rd, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer rd.Close()

	counting := &countingReader{r: resource.NewRateLimitedReader(ctx, rd, a.opts.controller)}
	analysis, err := snapshot.Read(counting)
	if err != nil {
		return nil, counting.n, err
	}

	return &Result{
		Epsilon:        analysis.Epsilon,
		PointCount:     analysis.PointCount,
		Diagram:        homology.RestoreDiagram(analysis.Pairs, analysis.ComponentMap, analysis.Significance),
		Edges:          analysis.Edges,
		EdgesWritten:   len(analysis.Edges),
		EdgesAttempted: analysis.EdgesAttempted,
		EdgesCapacity:  analysis.EdgesCapacity,
		Truncated:      analysis.Truncated(),
	}, counting.n, nil
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n

	return n, err
}

package topogo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topogo/blobstore"
	"github.com/hupe1980/topogo/compute"
	"github.com/hupe1980/topogo/geom"
	"github.com/hupe1980/topogo/grid"
	"github.com/hupe1980/topogo/resource"
	"github.com/hupe1980/topogo/snapshot"
	"github.com/hupe1980/topogo/testutil"
)

func newAnalyzer(t *testing.T, optFns ...Option) *Analyzer {
	t.Helper()

	a, err := New(compute.NewCPU(), optFns...)
	require.NoError(t, err)

	return a
}

func TestNewNilDevice(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilDevice)
}

func TestAnalyzeTwoClusters(t *testing.T) {
	a := newAnalyzer(t)

	points := []geom.Point3{{X: 0}, {X: 1}, {X: 10}, {X: 11}}

	res, err := a.Analyze(context.Background(), points, 1.5)
	require.NoError(t, err)

	assert.Equal(t, float32(1.5), res.Epsilon)
	assert.Equal(t, 4, res.PointCount)
	assert.Equal(t, 2, res.EdgesWritten)
	assert.False(t, res.Truncated)
	assert.Equal(t, 2, res.Diagram.NumComponents())
	assert.True(t, testutil.SamePartition([]uint32{0, 0, 1, 1}, res.Diagram.ComponentMap))
}

func TestAnalyzeDeterministicPartition(t *testing.T) {
	a := newAnalyzer(t)
	ctx := context.Background()

	points := testutil.Clusters(19, []geom.Point3{{X: -6}, {Y: 6}, {Z: 12}}, 40, 1)

	first, err := a.Analyze(ctx, points, 2.5)
	require.NoError(t, err)
	second, err := a.Analyze(ctx, points, 2.5)
	require.NoError(t, err)

	// Component ids may differ between runs, the grouping must not.
	assert.True(t, testutil.SamePartition(first.Diagram.ComponentMap, second.Diagram.ComponentMap))
	assert.Equal(t, first.Diagram.NumComponents(), second.Diagram.NumComponents())
}

func TestAnalyzeInvalidEpsilon(t *testing.T) {
	a := newAnalyzer(t)

	_, err := a.Analyze(context.Background(), []geom.Point3{{X: 0}}, -0.5)
	var invalid *ErrInvalidEpsilon
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, float32(-0.5), invalid.Epsilon)
}

func TestAnalyzeEmpty(t *testing.T) {
	a := newAnalyzer(t)

	res, err := a.Analyze(context.Background(), nil, 1)
	require.NoError(t, err)

	assert.Zero(t, res.PointCount)
	assert.Empty(t, res.Edges)
	assert.Zero(t, res.Diagram.NumComponents())
}

func TestAnalyzeTruncation(t *testing.T) {
	mc := &BasicMetricsCollector{}
	a := newAnalyzer(t, WithMaxEdges(3), WithMetricsCollector(mc))

	points := testutil.UniformBox(4, 20, geom.Point3{X: -1, Y: -1, Z: -1}, geom.Point3{X: 1, Y: 1, Z: 1})

	res, err := a.Analyze(context.Background(), points, 10)
	require.NoError(t, err)

	assert.True(t, res.Truncated)
	assert.Equal(t, 3, res.EdgesWritten)
	assert.Equal(t, 3, res.EdgesCapacity)
	assert.Equal(t, 20*19/2, res.EdgesAttempted)
	assert.Len(t, res.Edges, 3)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.AnalyzeCount)
	assert.Equal(t, int64(1), stats.Truncations)
}

func TestAnalyzeResourceExhausted(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1024})
	a := newAnalyzer(t, WithResourceController(rc))

	points := testutil.UniformBox(9, 100, geom.Point3{}, geom.Point3{X: 1, Y: 1, Z: 1})

	_, err := a.Analyze(context.Background(), points, 1)
	var exhausted *ErrResourceExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 100, exhausted.PointCount)
	assert.Equal(t, int64(1024), exhausted.LimitBytes)

	// The rejected pass must not leak its reservation.
	assert.Zero(t, rc.MemoryUsage())
}

func TestAnalyzeReleasesPassSlot(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxConcurrentPasses: 1})
	a := newAnalyzer(t, WithResourceController(rc))
	ctx := context.Background()

	points := []geom.Point3{{X: 0}, {X: 1}}
	for i := 0; i < 3; i++ {
		_, err := a.Analyze(ctx, points, 2)
		require.NoError(t, err)
	}
}

func TestBuildGrid(t *testing.T) {
	a := newAnalyzer(t)

	points := testutil.UniformBox(3, 200, geom.Point3{X: -5, Y: -5, Z: -5}, geom.Point3{X: 5, Y: 5, Z: 5})

	g, err := a.BuildGrid(context.Background(), points, grid.Params{
		Min:      geom.Point3{X: -5, Y: -5, Z: -5},
		CellSize: 1,
		Res:      [3]uint32{10, 10, 10},
	})
	require.NoError(t, err)
	assert.Equal(t, len(points), g.Len())
}

func TestSnapshotRoundtrip(t *testing.T) {
	a := newAnalyzer(t, WithSnapshotOptions(func(o *snapshot.Options) {
		o.Compression = snapshot.CompressionLZ4
	}))
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	points := []geom.Point3{{X: 0}, {X: 1}, {X: 10}, {X: 11}}
	res, err := a.Analyze(ctx, points, 1.5)
	require.NoError(t, err)

	require.NoError(t, a.SaveSnapshot(ctx, store, "passes/p1", res))

	loaded, err := a.LoadSnapshot(ctx, store, "passes/p1")
	require.NoError(t, err)

	assert.Equal(t, res.Epsilon, loaded.Epsilon)
	assert.Equal(t, res.PointCount, loaded.PointCount)
	assert.Equal(t, res.Diagram.Pairs, loaded.Diagram.Pairs)
	assert.Equal(t, res.Diagram.ComponentMap, loaded.Diagram.ComponentMap)
	assert.Equal(t, res.Diagram.Significance(), loaded.Diagram.Significance())
	assert.Equal(t, res.Edges, loaded.Edges)
	assert.Equal(t, res.Truncated, loaded.Truncated)
}

func TestSnapshotRoundtripThrottled(t *testing.T) {
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	a := newAnalyzer(t, WithResourceController(rc))
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	// Dense enough that the edge section dwarfs the header, so the payload
	// block goes through the throttle as one large write.
	points := testutil.UniformBox(13, 120, geom.Point3{X: -1, Y: -1, Z: -1}, geom.Point3{X: 1, Y: 1, Z: 1})
	res, err := a.Analyze(ctx, points, 10)
	require.NoError(t, err)
	require.NotEmpty(t, res.Edges)

	require.NoError(t, a.SaveSnapshot(ctx, store, "passes/throttled", res))

	loaded, err := a.LoadSnapshot(ctx, store, "passes/throttled")
	require.NoError(t, err)
	assert.Equal(t, res.Diagram.ComponentMap, loaded.Diagram.ComponentMap)
	assert.Equal(t, res.Edges, loaded.Edges)
}

func TestLoadSnapshotMissing(t *testing.T) {
	a := newAnalyzer(t)

	_, err := a.LoadSnapshot(context.Background(), blobstore.NewMemoryStore(), "nope")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestAnalyzeMetrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	a := newAnalyzer(t, WithMetricsCollector(mc))
	ctx := context.Background()

	_, err := a.Analyze(ctx, []geom.Point3{{X: 0}, {X: 1}}, 2)
	require.NoError(t, err)

	_, err = a.Analyze(ctx, nil, -1)
	require.Error(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.AnalyzeCount)
	assert.Equal(t, int64(1), stats.AnalyzeErrors)
	assert.Equal(t, int64(1), stats.EdgesTotal)
}

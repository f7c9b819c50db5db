package distance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topogo/compute"
	"github.com/hupe1980/topogo/geom"
	"github.com/hupe1980/topogo/testutil"
)

func TestComputeKnownValues(t *testing.T) {
	dev := compute.NewCPU()
	ctx := context.Background()

	points := []geom.Point3{
		{X: 0}, {X: 1}, {X: 10}, {X: 11},
	}

	m, err := Compute(ctx, dev, points)
	require.NoError(t, err)
	require.Equal(t, 4, m.Dim())

	host, err := m.ReadBack(ctx, dev)
	require.NoError(t, err)

	assert.InDelta(t, 1, host.At(0, 1), 1e-6)
	assert.InDelta(t, 10, host.At(0, 2), 1e-6)
	assert.InDelta(t, 1, host.At(2, 3), 1e-6)
	assert.InDelta(t, 11, host.At(0, 3), 1e-6)
}

func TestComputeSymmetryAndZeroDiagonal(t *testing.T) {
	dev := compute.NewCPU()
	ctx := context.Background()

	points := testutil.UniformBox(42, 50, geom.Point3{X: -5, Y: -5, Z: -5}, geom.Point3{X: 5, Y: 5, Z: 5})

	m, err := Compute(ctx, dev, points)
	require.NoError(t, err)

	host, err := m.ReadBack(ctx, dev)
	require.NoError(t, err)

	for i := 0; i < len(points); i++ {
		require.Zero(t, host.At(i, i))
		for j := i + 1; j < len(points); j++ {
			require.Equal(t, host.At(i, j), host.At(j, i), "(%d,%d)", i, j)
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	dev := compute.NewCPU()

	m, err := Compute(context.Background(), dev, nil)
	require.NoError(t, err)
	assert.Zero(t, m.Dim())
}

func TestFromHost(t *testing.T) {
	h := FromHost(2, []float32{0, 3, 3, 0})

	assert.Equal(t, 2, h.Dim())
	assert.EqualValues(t, 3, h.At(0, 1))
	assert.EqualValues(t, 3, h.At(1, 0))
}

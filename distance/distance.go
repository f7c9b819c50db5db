package distance

import (
	"context"

	"github.com/hupe1980/topogo/compute"
	"github.com/hupe1980/topogo/geom"
)

// Matrix is a device-resident, row-major n x n distance matrix.
//
// It is symmetric by construction with a zero diagonal, and lives for one
// analysis pass. Host-side consumers must obtain a HostMatrix via ReadBack
// before reading values.
type Matrix struct {
	n   int
	buf *compute.DeviceOnly[float32]
}

// Compute produces the full pairwise distance matrix for points.
//
// One kernel invocation per (i, j) pair writes distance(points[i], points[j])
// to m[j*n+i]. Every invocation owns a disjoint slot, so no synchronization
// beyond the dispatch barrier is needed. There is no partial-failure mode:
// either the full matrix is produced or an error is returned.
func Compute(ctx context.Context, dev compute.Device, points []geom.Point3) (*Matrix, error) {
	n := len(points)

	m := &Matrix{
		n:   n,
		buf: compute.Alloc[float32](n * n),
	}
	if n == 0 {
		return m, nil
	}

	data := m.buf.Bind()
	if err := dev.Dispatch2D(ctx, n, n, func(i, j int) {
		data[j*n+i] = geom.Distance(points[i], points[j])
	}); err != nil {
		return nil, err
	}

	return m, nil
}

// Dim returns the matrix dimension n.
func (m *Matrix) Dim() int { return m.n }

// Bind returns the device-side view for kernels of downstream stages.
func (m *Matrix) Bind() []float32 { return m.buf.Bind() }

// ReadBack copies the matrix to the host for sequential consumers.
func (m *Matrix) ReadBack(ctx context.Context, dev compute.Device) (*HostMatrix, error) {
	buf, err := compute.ReadBack(ctx, dev, m.buf)
	if err != nil {
		return nil, err
	}

	return &HostMatrix{n: m.n, buf: buf}, nil
}

// HostMatrix is the host-readable form of a Matrix.
type HostMatrix struct {
	n   int
	buf *compute.HostReadable[float32]
}

// FromHost wraps an existing row-major n x n float32 slice.
// Intended for tests and callers that computed distances elsewhere.
func FromHost(n int, data []float32) *HostMatrix {
	return &HostMatrix{n: n, buf: compute.FromHost(data)}
}

// Dim returns the matrix dimension n.
func (h *HostMatrix) Dim() int { return h.n }

// At returns the distance between points i and j.
func (h *HostMatrix) At(i, j int) float32 {
	return h.buf.At(j*h.n + i)
}

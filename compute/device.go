package compute

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Device runs kernels over a thread grid.
//
// Implementations must guarantee that a dispatch call does not return before
// every kernel invocation has completed (the completion barrier of one
// analysis stage). Kernels must not assume any invocation order.
type Device interface {
	// Dispatch1D runs kernel once for every i in [0, n).
	Dispatch1D(ctx context.Context, n int, kernel func(i int)) error

	// Dispatch2D runs kernel once for every (x, y) in [0, width) x [0, height).
	Dispatch2D(ctx context.Context, width, height int, kernel func(x, y int)) error

	// Name returns a human-readable backend name for logging.
	Name() string
}

// minChunk is the smallest index range handed to a single worker.
// Finer slicing costs more in scheduling than it gains in parallelism.
const minChunk = 256

// CPU is a Device backed by a goroutine worker pool.
type CPU struct {
	workers int
}

// CPUOption configures a CPU device.
type CPUOption func(*CPU)

// WithWorkers sets the number of parallel workers.
// Values <= 0 fall back to GOMAXPROCS.
func WithWorkers(n int) CPUOption {
	return func(c *CPU) {
		c.workers = n
	}
}

// NewCPU creates a CPU dispatch device.
func NewCPU(optFns ...CPUOption) *CPU {
	c := &CPU{}
	for _, fn := range optFns {
		fn(c)
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(0)
	}

	return c
}

// Name implements Device.
func (c *CPU) Name() string { return "cpu" }

// Dispatch1D implements Device.
func (c *CPU) Dispatch1D(ctx context.Context, n int, kernel func(i int)) error {
	if n <= 0 {
		return ctx.Err()
	}

	chunk := n / c.workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			// Cancellation is checked at chunk granularity; a running
			// chunk always finishes so partial passes never observe
			// half-written slots.
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				kernel(i)
			}
			return nil
		})
	}

	return g.Wait()
}

// Dispatch2D implements Device.
//
// The grid is flattened row-major so wide and tall grids balance equally
// across workers.
func (c *CPU) Dispatch2D(ctx context.Context, width, height int, kernel func(x, y int)) error {
	if width <= 0 || height <= 0 {
		return ctx.Err()
	}

	return c.Dispatch1D(ctx, width*height, func(i int) {
		kernel(i%width, i/width)
	})
}

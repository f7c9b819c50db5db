// Package resource enforces global limits on analysis passes: a memory
// budget for the quadratic distance matrices, a cap on concurrently running
// passes, and an IO throughput limit for snapshot transfers.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for pass-scoped buffer memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentPasses is the maximum number of analysis passes in
	// flight. If 0, defaults to 1.
	MaxConcurrentPasses int64

	// IOLimitBytesPerSec is the maximum IO throughput for snapshot reads
	// and writes. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages global resources (memory, pass concurrency, IO).
//
// A nil *Controller is valid and enforces nothing, so callers can thread an
// optional controller through without nil checks.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	passSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentPasses <= 0 {
		cfg.MaxConcurrentPasses = 1
	}

	c := &Controller{
		cfg:     cfg,
		passSem: semaphore.NewWeighted(cfg.MaxConcurrentPasses),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns false if the limit would be exceeded; the caller treats that as a
// resource-exhaustion failure for the current pass, never as a wait.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}
	c.memUsed.Add(bytes)

	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the currently reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}

	return c.memUsed.Load()
}

// MemoryLimit returns the configured hard limit, 0 if unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}

	return c.cfg.MemoryLimitBytes
}

// AcquirePass reserves a pass slot, blocking until one is free or ctx is
// canceled.
func (c *Controller) AcquirePass(ctx context.Context) error {
	if c == nil {
		return nil
	}

	return c.passSem.Acquire(ctx, 1)
}

// ReleasePass releases a pass slot.
func (c *Controller) ReleasePass() {
	if c == nil {
		return
	}

	c.passSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
//
// Requests larger than the limiter's burst are charged in burst-sized
// installments; rate.WaitN rejects a single request above the burst, and a
// snapshot payload block can exceed one second's budget.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}

	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}

	return nil
}

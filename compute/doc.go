// Package compute provides the data-parallel dispatch substrate used by the
// analysis stages.
//
// A Device runs kernels over a 1D or 2D thread grid. Dispatches are
// synchronous: when Dispatch1D/Dispatch2D returns, every kernel invocation has
// completed and its writes are visible. Within a dispatch there is no
// inter-thread ordering guarantee; correctness relies on each invocation
// writing a disjoint output slot, or on a Counter for shared append.
//
// Buffer access modes are modeled at the type level: DeviceOnly buffers are
// scratch storage for kernels, HostReadable buffers are the result of an
// explicit ReadBack. Host-side consumers accept only HostReadable buffers, so
// reading device scratch from the host is rejected at compile time rather
// than caught at runtime.
//
// The caller owns the Device and passes it to every entry point; there is no
// process-wide device singleton.
package compute

package compute

import "context"

// DeviceOnly is a buffer visible to kernels but not to host-side consumers.
//
// The host must never interpret a DeviceOnly buffer directly; it first has to
// be converted with ReadBack. APIs that consume analysis results take
// HostReadable parameters, so handing them device scratch is a compile error.
type DeviceOnly[T any] struct {
	data []T
}

// Alloc allocates a zeroed device buffer of n elements.
func Alloc[T any](n int) *DeviceOnly[T] {
	return &DeviceOnly[T]{data: make([]T, n)}
}

// Upload copies host data into a fresh device buffer.
func Upload[T any](data []T) *DeviceOnly[T] {
	b := Alloc[T](len(data))
	copy(b.data, data)

	return b
}

// Len returns the element count.
func (b *DeviceOnly[T]) Len() int { return len(b.data) }

// Bind returns the device-side view of the buffer.
//
// Only valid inside a kernel passed to a Device dispatch; host code must go
// through ReadBack instead.
func (b *DeviceOnly[T]) Bind() []T { return b.data }

// HostReadable is a buffer whose contents have been made visible to the host
// by an explicit ReadBack.
type HostReadable[T any] struct {
	data []T
}

// Data returns the host-side contents.
func (h *HostReadable[T]) Data() []T { return h.data }

// Len returns the element count.
func (h *HostReadable[T]) Len() int { return len(h.data) }

// At returns the element at index i.
func (h *HostReadable[T]) At(i int) T { return h.data[i] }

// FromHost wraps host-produced data in a HostReadable buffer without a copy.
// Intended for tests and for results that never lived on the device.
func FromHost[T any](data []T) *HostReadable[T] {
	return &HostReadable[T]{data: data}
}

// ReadBack copies a device buffer to the host.
//
// It is the synchronization point between the device stages and host-side
// consumers: dispatches issued on dev before this call are complete (the
// dispatch contract), and the returned buffer is an independent copy that
// later dispatches cannot mutate.
func ReadBack[T any](ctx context.Context, dev Device, b *DeviceOnly[T]) (*HostReadable[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]T, len(b.data))
	copy(out, b.data)

	return &HostReadable[T]{data: out}, nil
}

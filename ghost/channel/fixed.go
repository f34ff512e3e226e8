// Package channel provides data channels over plain Go slices.
package channel

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/meshsim/ghostsync/ghost"
)

var (
	// ErrNotFixedSize is returned for record types without a fixed binary size.
	ErrNotFixedSize = errors.New("record type has no fixed size")
	// ErrOutOfRange is returned when a local id is beyond the channel.
	ErrOutOfRange = errors.New("local id out of range")
	// ErrShortBuffer is returned when a buffer cannot hold the records.
	ErrShortBuffer = errors.New("buffer too short")
)

var _ ghost.DataChannel = &Fixed[uint64]{}

// Opt configures a Fixed channel.
type Opt func(*options)

type options struct {
	stride int
}

// WithStride overrides the reported stride. The ghost package only accepts 1.
func WithStride(stride int) Opt {
	return func(o *options) {
		o.stride = stride
	}
}

// Fixed is a channel of values with a fixed binary size, for example numbers,
// arrays of numbers and structs of those. Records are packed little endian.
type Fixed[T any] struct {
	values      []T
	size        int
	stride      int
	needsUpdate bool
}

// New creates a channel of n zero values that needs an update.
func New[T any](n int, opts ...Opt) (*Fixed[T], error) {
	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		return nil, fmt.Errorf("%w: %T", ErrNotFixedSize, zero)
	}
	o := options{stride: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return &Fixed[T]{
		values:      make([]T, n),
		size:        size,
		stride:      o.stride,
		needsUpdate: true,
	}, nil
}

// Values returns the backing slice. It is invalidated by Resize.
func (f *Fixed[T]) Values() []T { return f.values }

// Get returns the value at lid.
func (f *Fixed[T]) Get(lid ghost.LocalID) T { return f.values[lid] }

// Set stores v at lid.
func (f *Fixed[T]) Set(lid ghost.LocalID, v T) { f.values[lid] = v }

// Resize grows or shrinks the channel to n records, keeping the values below
// min(n, Size()).
func (f *Fixed[T]) Resize(n int) {
	if n <= cap(f.values) {
		old := len(f.values)
		f.values = f.values[:n]
		clear(f.values[min(old, n):])
		return
	}
	values := make([]T, n)
	copy(values, f.values)
	f.values = values
}

// SetNeedsUpdate marks whether the channel changed since the last
// synchronization.
func (f *Fixed[T]) SetNeedsUpdate(v bool) { f.needsUpdate = v }

func (f *Fixed[T]) Size() int         { return len(f.values) }
func (f *Fixed[T]) RecordSize() int   { return f.size }
func (f *Fixed[T]) Stride() int       { return f.stride }
func (f *Fixed[T]) NeedsUpdate() bool { return f.needsUpdate }

func (f *Fixed[T]) span(buf []byte, lids []ghost.LocalID) error {
	if len(buf) < len(lids)*f.size {
		return fmt.Errorf("%w: %d bytes for %d records of %d bytes", ErrShortBuffer, len(buf), len(lids), f.size)
	}
	for _, lid := range lids {
		if int(lid) >= len(f.values) {
			return fmt.Errorf("%w: %d of %d", ErrOutOfRange, lid, len(f.values))
		}
	}
	return nil
}

// Pack writes the records at lids into buf.
func (f *Fixed[T]) Pack(buf []byte, lids []ghost.LocalID) error {
	if err := f.span(buf, lids); err != nil {
		return err
	}
	for i, lid := range lids {
		if _, err := binary.Encode(buf[i*f.size:], binary.LittleEndian, f.values[lid]); err != nil {
			return fmt.Errorf("pack local id %d: %w", lid, err)
		}
	}
	return nil
}

// Unpack reads the records for lids from buf.
func (f *Fixed[T]) Unpack(buf []byte, lids []ghost.LocalID) error {
	if err := f.span(buf, lids); err != nil {
		return err
	}
	for i, lid := range lids {
		if _, err := binary.Decode(buf[i*f.size:], binary.LittleEndian, &f.values[lid]); err != nil {
			return fmt.Errorf("unpack local id %d: %w", lid, err)
		}
	}
	return nil
}

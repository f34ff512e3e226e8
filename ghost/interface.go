package ghost

import (
	"context"

	"github.com/meshsim/ghostsync/transport"
)

//go:generate mockgen -typed -package=ghost -destination=./mocks.go -source=./interface.go

// Transport provides the collective primitives negotiation and
// synchronization are built on. Every call is collective: all ranks must issue
// the same calls in the same order.
type Transport interface {
	Rank() int
	Size() int
	Barrier(ctx context.Context) error
	AllReduce(ctx context.Context, op transport.Op, values []int64) ([]int64, error)
	// AllToAll sends send[p] to rank p and returns the payload received from
	// every rank, indexed by source rank.
	AllToAll(ctx context.Context, send [][]byte) ([][]byte, error)
}

// DataChannel is an externally owned array of fixed-size records mirrored
// between owner and ghost slots.
type DataChannel interface {
	// Size returns the number of records.
	Size() int
	// RecordSize returns the size of a packed record in bytes.
	RecordSize() int
	// Stride returns the number of records per local id. Only 1 is supported.
	Stride() int
	// NeedsUpdate reports whether the channel has to be synchronized.
	NeedsUpdate() bool
	// Pack writes the records at lids into buf, in order.
	Pack(buf []byte, lids []LocalID) error
	// Unpack reads records from buf into lids, in order.
	Unpack(buf []byte, lids []LocalID) error
}

var _ Transport = (*transport.Endpoint)(nil)

// Package transport implements the collective primitives used to negotiate
// and synchronize ghost entries: barrier, all-reduce and variable size
// all-to-all between a fixed group of ranks.
//
// An Endpoint runs collectives for one rank on top of a Link that delivers
// point-to-point messages. NewLocalGroup connects endpoints in process, and
// the lp2p subpackage connects them over libp2p streams.
package transport

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by collectives on a closed endpoint.
	ErrClosed = errors.New("transport closed")
	// ErrTimeout is returned when peers did not contribute to a collective in
	// time.
	ErrTimeout = errors.New("collective timed out")
	// ErrReduceLength is returned when ranks reduce vectors of different
	// lengths.
	ErrReduceLength = errors.New("reduction length mismatch")
	// ErrDuplicate is returned when a rank delivers twice to the same round.
	ErrDuplicate = errors.New("duplicate message")
	// ErrBadRank is returned for ranks outside the group.
	ErrBadRank = errors.New("rank out of range")
	// ErrPayloads is returned when AllToAll gets a payload count other than
	// the group size.
	ErrPayloads = errors.New("payload count does not match group size")
)

// Op is a reduction operator.
type Op uint8

const (
	OpSum Op = iota + 1
	OpMax
	OpMin
)

func (o Op) String() string {
	switch o {
	case OpSum:
		return "sum"
	case OpMax:
		return "max"
	case OpMin:
		return "min"
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

func (o Op) apply(acc, v int64) int64 {
	switch o {
	case OpSum:
		return acc + v
	case OpMax:
		return max(acc, v)
	case OpMin:
		return min(acc, v)
	}
	panic("unknown reduction " + o.String())
}

// Link delivers messages of an endpoint to other ranks of its group.
// Send returns once the message is handed to the receiving endpoint.
type Link interface {
	Send(ctx context.Context, to int, msg *Message) error
}

package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meshsim/ghostsync/codec"
)

// Opt configures an Endpoint.
type Opt func(*Endpoint)

// WithLogger specifies the logger for the Endpoint.
func WithLogger(logger *zap.Logger) Opt {
	return func(e *Endpoint) {
		e.logger = logger
	}
}

// WithTimeout bounds how long a collective waits for the other ranks. Zero
// waits until the context is done.
func WithTimeout(timeout time.Duration) Opt {
	return func(e *Endpoint) {
		e.timeout = timeout
	}
}

// WithClock specifies the clock used for timeouts.
func WithClock(clock clockwork.Clock) Opt {
	return func(e *Endpoint) {
		e.clock = clock
	}
}

// WithMetrics enables prometheus metrics for the Endpoint.
func WithMetrics() Opt {
	return func(e *Endpoint) {
		e.metrics = newTracker()
	}
}

// Endpoint runs collectives for one rank.
//
// Collectives are numbered in call order and must be issued in the same
// order on every rank. Calls on one endpoint are serialized. After a failed
// collective the ranks may be out of step and the group should be closed.
type Endpoint struct {
	logger  *zap.Logger
	rank    int
	size    int
	link    Link
	timeout time.Duration
	clock   clockwork.Clock
	metrics *tracker

	box *mailbox

	mu  sync.Mutex
	seq uint64
}

// NewEndpoint creates the endpoint of rank in a group of size ranks. Messages
// received for it must be passed to Deliver.
func NewEndpoint(rank, size int, link Link, opts ...Opt) *Endpoint {
	if size <= 0 || rank < 0 || rank >= size {
		panic(fmt.Sprintf("rank %d out of range for group of %d", rank, size))
	}
	e := &Endpoint{
		logger: zap.NewNop(),
		rank:   rank,
		size:   size,
		link:   link,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.box = newMailbox(size, e.clock)
	return e
}

// Rank returns the rank of the endpoint.
func (e *Endpoint) Rank() int { return e.rank }

// Size returns the number of ranks in the group.
func (e *Endpoint) Size() int { return e.size }

// Deliver accepts a message sent by rank from.
func (e *Endpoint) Deliver(from int, msg *Message) error {
	return e.box.put(from, msg)
}

// Close fails pending and future collectives with ErrClosed.
func (e *Endpoint) Close() error {
	e.box.close()
	return nil
}

// AllToAll sends send[p] to rank p and returns the payloads of all ranks,
// indexed by source. Payloads may have any length, including zero.
func (e *Endpoint) AllToAll(ctx context.Context, send [][]byte) ([][]byte, error) {
	if len(send) != e.size {
		return nil, fmt.Errorf("%w: %d for %d ranks", ErrPayloads, len(send), e.size)
	}
	return e.exchange(ctx, kindAllToAll, send)
}

// AllReduce combines values element-wise across ranks with op. Every rank
// must pass the same number of values.
func (e *Endpoint) AllReduce(ctx context.Context, op Op, values []int64) ([]int64, error) {
	if op < OpSum || op > OpMin {
		panic("unknown reduction " + op.String())
	}
	buf := codec.MustEncode(vector(values))
	send := make([][]byte, e.size)
	for p := range send {
		send[p] = buf
	}
	recv, err := e.exchange(ctx, kindAllReduce, send)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(values))
	for from, buf := range recv {
		var v vector
		if err := codec.Decode(buf, &v); err != nil {
			return nil, fmt.Errorf("decode reduction from rank %d: %w", from, err)
		}
		if len(v) != len(values) {
			return nil, fmt.Errorf("%w: rank %d sent %d values, expected %d", ErrReduceLength, from, len(v), len(values))
		}
		if from == 0 {
			copy(out, v)
			continue
		}
		for i, x := range v {
			out[i] = op.apply(out[i], x)
		}
	}
	return out, nil
}

// Barrier returns once every rank entered it.
func (e *Endpoint) Barrier(ctx context.Context) error {
	_, err := e.exchange(ctx, kindBarrier, make([][]byte, e.size))
	return err
}

func (e *Endpoint) exchange(ctx context.Context, kind string, send [][]byte) ([][]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	seq := e.seq
	e.seq++
	start := e.clock.Now()

	recv, err := e.roundtrip(ctx, seq, send)
	e.metrics.done(kind, e.clock.Since(start).Seconds(), err)
	if err != nil {
		e.logger.Debug("collective failed",
			zap.String("kind", kind),
			zap.Uint64("seq", seq),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s round %d: %w", kind, seq, err)
	}
	return recv, nil
}

func (e *Endpoint) roundtrip(ctx context.Context, seq uint64, send [][]byte) ([][]byte, error) {
	var (
		eg   errgroup.Group
		sent int
	)
	for p, data := range send {
		msg := &Message{Seq: seq, Data: data}
		if p == e.rank {
			if err := e.box.put(p, msg); err != nil {
				return nil, err
			}
			continue
		}
		sent += len(data)
		eg.Go(func() error {
			if err := e.link.Send(ctx, p, msg); err != nil {
				return fmt.Errorf("send to rank %d: %w", p, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	recv, err := e.box.wait(ctx, seq, e.timeout)
	if err != nil {
		return nil, err
	}
	received := 0
	for p, data := range recv {
		if p != e.rank {
			received += len(data)
		}
	}
	e.metrics.bytes(sent, received)
	return recv, nil
}

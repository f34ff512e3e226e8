package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// round collects the messages of one collective, indexed by source rank.
type round struct {
	msgs    [][]byte
	got     []bool
	pending int
	done    chan struct{}
}

func newRound(size int) *round {
	return &round{
		msgs:    make([][]byte, size),
		got:     make([]bool, size),
		pending: size,
		done:    make(chan struct{}),
	}
}

// mailbox buffers messages until the collective they belong to is waited for.
// Rounds are created by whichever comes first, the wait or a message, so a
// fast peer may run one collective ahead.
type mailbox struct {
	size  int
	clock clockwork.Clock

	mu     sync.Mutex
	rounds map[uint64]*round
	// floor is the first round that was not consumed yet
	floor  uint64
	closed chan struct{}
}

func newMailbox(size int, clock clockwork.Clock) *mailbox {
	return &mailbox{
		size:   size,
		clock:  clock,
		rounds: make(map[uint64]*round),
		closed: make(chan struct{}),
	}
}

func (m *mailbox) get(seq uint64) *round {
	r, ok := m.rounds[seq]
	if !ok {
		r = newRound(m.size)
		m.rounds[seq] = r
	}
	return r
}

func (m *mailbox) put(from int, msg *Message) error {
	if from < 0 || from >= m.size {
		return fmt.Errorf("%w: message from %d", ErrBadRank, from)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.closed:
		return ErrClosed
	default:
	}
	if msg.Seq < m.floor {
		return fmt.Errorf("%w: round %d from rank %d already completed", ErrDuplicate, msg.Seq, from)
	}
	r := m.get(msg.Seq)
	if r.got[from] {
		return fmt.Errorf("%w: round %d from rank %d", ErrDuplicate, msg.Seq, from)
	}
	r.got[from] = true
	r.msgs[from] = msg.Data
	r.pending--
	if r.pending == 0 {
		close(r.done)
	}
	return nil
}

// wait blocks until every rank delivered its message for seq. With a positive
// timeout it fails with ErrTimeout once the clock advanced by timeout.
func (m *mailbox) wait(ctx context.Context, seq uint64, timeout time.Duration) ([][]byte, error) {
	m.mu.Lock()
	r := m.get(seq)
	m.mu.Unlock()

	var expired <-chan time.Time
	if timeout > 0 {
		expired = m.clock.After(timeout)
	}
	select {
	case <-r.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.closed:
		return nil, ErrClosed
	case <-expired:
		m.mu.Lock()
		missing := make([]int, 0, r.pending)
		for rank, ok := range r.got {
			if !ok {
				missing = append(missing, rank)
			}
		}
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: round %d after %v, missing ranks %v", ErrTimeout, seq, timeout, missing)
	}

	m.mu.Lock()
	delete(m.rounds, seq)
	if seq >= m.floor {
		m.floor = seq + 1
	}
	m.mu.Unlock()
	return r.msgs, nil
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.closed:
	default:
		close(m.closed)
	}
}

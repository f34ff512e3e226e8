package transport

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	fuzz "github.com/google/gofuzz"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/meshsim/ghostsync/log/logtest"
)

func runGroup(t *testing.T, group []*Endpoint, fn func(e *Endpoint) error) {
	t.Helper()
	var eg errgroup.Group
	for _, e := range group {
		eg.Go(func() error { return fn(e) })
	}
	require.NoError(t, eg.Wait())
}

func TestAllToAll(t *testing.T) {
	const size = 4
	group := NewLocalGroup(size, WithLogger(logtest.New(t)))
	results := make([][][]byte, size)
	runGroup(t, group, func(e *Endpoint) error {
		send := make([][]byte, size)
		for p := range send {
			if p == (e.Rank()+1)%size {
				continue // empty payload
			}
			send[p] = []byte(fmt.Sprintf("%d->%d", e.Rank(), p))
		}
		recv, err := e.AllToAll(context.Background(), send)
		results[e.Rank()] = recv
		return err
	})
	for rank, recv := range results {
		require.Len(t, recv, size)
		for from, data := range recv {
			if rank == (from+1)%size {
				require.Empty(t, data)
				continue
			}
			require.Equal(t, fmt.Sprintf("%d->%d", from, rank), string(data))
		}
	}
}

func TestAllToAllPayloadCount(t *testing.T) {
	group := NewLocalGroup(2)
	_, err := group[0].AllToAll(context.Background(), make([][]byte, 3))
	require.ErrorIs(t, err, ErrPayloads)
}

func TestAllReduce(t *testing.T) {
	const size = 3
	for _, tc := range []struct {
		op   Op
		want []int64
	}{
		{OpSum, []int64{3, -3, 3}},
		{OpMax, []int64{2, 0, 1}},
		{OpMin, []int64{0, -2, 1}},
	} {
		t.Run(tc.op.String(), func(t *testing.T) {
			group := NewLocalGroup(size)
			runGroup(t, group, func(e *Endpoint) error {
				r := int64(e.Rank())
				out, err := e.AllReduce(context.Background(), tc.op, []int64{r, -r, 1})
				if err != nil {
					return err
				}
				if fmt.Sprint(out) != fmt.Sprint(tc.want) {
					return fmt.Errorf("rank %d: got %v, want %v", r, out, tc.want)
				}
				return nil
			})
		})
	}
}

func TestAllReduceRandom(t *testing.T) {
	const size = 4
	var values [size][6]int64
	f := fuzz.NewWithSeed(1001)
	for i := 0; i < 20; i++ {
		f.Fuzz(&values)
		var sum, hi, lo [6]int64
		for i := range sum {
			hi[i], lo[i] = values[0][i], values[0][i]
			for r := range values {
				sum[i] += values[r][i]
				hi[i] = max(hi[i], values[r][i])
				lo[i] = min(lo[i], values[r][i])
			}
		}
		group := NewLocalGroup(size)
		var (
			mu      sync.Mutex
			results = map[Op][][]int64{}
		)
		runGroup(t, group, func(e *Endpoint) error {
			for _, op := range []Op{OpSum, OpMax, OpMin} {
				out, err := e.AllReduce(context.Background(), op, values[e.Rank()][:])
				if err != nil {
					return err
				}
				mu.Lock()
				results[op] = append(results[op], out)
				mu.Unlock()
			}
			return nil
		})
		for op, want := range map[Op][6]int64{OpSum: sum, OpMax: hi, OpMin: lo} {
			require.Len(t, results[op], size)
			for _, out := range results[op] {
				require.Equal(t, want[:], out, op.String())
			}
		}
	}
}

func TestAllReduceLengthMismatch(t *testing.T) {
	group := NewLocalGroup(2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for _, e := range group {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[e.Rank()] = e.AllReduce(context.Background(), OpSum, make([]int64, e.Rank()+1))
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.ErrorIs(t, err, ErrReduceLength)
	}
}

func TestBarrier(t *testing.T) {
	group := NewLocalGroup(5, WithMetrics())
	ok := collectives.WithLabelValues(kindBarrier, "ok")
	before := testutil.ToFloat64(ok)
	runGroup(t, group, func(e *Endpoint) error {
		for range 3 {
			if err := e.Barrier(context.Background()); err != nil {
				return err
			}
		}
		return nil
	})
	require.Equal(t, before+15, testutil.ToFloat64(ok))
}

type recordingLink struct {
	mu   sync.Mutex
	sent []*Message
}

func (l *recordingLink) Send(_ context.Context, _ int, msg *Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, msg)
	return nil
}

func TestEarlyArrival(t *testing.T) {
	link := &recordingLink{}
	e := NewEndpoint(0, 2, link)
	require.NoError(t, e.Deliver(1, &Message{Seq: 1, Data: []byte("second")}))
	require.NoError(t, e.Deliver(1, &Message{Seq: 0, Data: []byte("first")}))

	recv, err := e.AllToAll(context.Background(), [][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("a"), []byte("first")}, recv)

	recv, err = e.AllToAll(context.Background(), [][]byte{[]byte("c"), []byte("d")})
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("c"), []byte("second")}, recv)

	require.Len(t, link.sent, 2)
	require.Equal(t, uint64(0), link.sent[0].Seq)
	require.Equal(t, uint64(1), link.sent[1].Seq)
}

func TestDuplicate(t *testing.T) {
	e := NewEndpoint(0, 2, &recordingLink{})
	require.NoError(t, e.Deliver(1, &Message{Seq: 0}))
	require.ErrorIs(t, e.Deliver(1, &Message{Seq: 0}), ErrDuplicate)
	require.NoError(t, e.Barrier(context.Background()))
	require.ErrorIs(t, e.Deliver(1, &Message{Seq: 0}), ErrDuplicate)
	require.ErrorIs(t, e.Deliver(2, &Message{Seq: 1}), ErrBadRank)
}

func TestTimeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	e := NewEndpoint(0, 3, &recordingLink{}, WithClock(clock), WithTimeout(time.Second))
	require.NoError(t, e.Deliver(2, &Message{Seq: 0}))

	errc := make(chan error, 1)
	go func() {
		errc <- e.Barrier(context.Background())
	}()
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	err := <-errc
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorContains(t, err, "missing ranks [1]")
}

func TestClose(t *testing.T) {
	e := NewEndpoint(1, 2, &recordingLink{})
	errc := make(chan error, 1)
	go func() {
		errc <- e.Barrier(context.Background())
	}()
	require.NoError(t, e.Close())
	require.ErrorIs(t, <-errc, ErrClosed)
	require.ErrorIs(t, e.Deliver(0, &Message{}), ErrClosed)
}

func TestContextCanceled(t *testing.T) {
	e := NewEndpoint(0, 2, &recordingLink{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.AllToAll(ctx, make([][]byte, 2))
	require.ErrorIs(t, err, context.Canceled)
}

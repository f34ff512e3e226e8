package lp2p

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"github.com/meshsim/ghostsync/transport"
)

func newGroup(t *testing.T, size int, cfg Config) []*Transport {
	t.Helper()
	mesh, err := mocknet.FullMeshConnected(size)
	require.NoError(t, err)
	t.Cleanup(func() { mesh.Close() })
	hosts := mesh.Hosts()
	peers := make([]peer.ID, len(hosts))
	for i, h := range hosts {
		peers[i] = h.ID()
	}
	group := make([]*Transport, len(hosts))
	for i, h := range hosts {
		tr, err := New(h, peers, cfg,
			WithLogger(zaptest.NewLogger(t)),
			WithEndpointOpts(transport.WithTimeout(10*time.Second)),
		)
		require.NoError(t, err)
		require.Equal(t, i, tr.Rank())
		t.Cleanup(func() { tr.Close() })
		group[i] = tr
	}
	return group
}

func TestCollectives(t *testing.T) {
	const size = 3
	group := newGroup(t, size, DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var eg errgroup.Group
	for _, tr := range group {
		eg.Go(func() error {
			send := make([][]byte, size)
			for p := range send {
				send[p] = []byte(fmt.Sprintf("%d->%d", tr.Rank(), p))
			}
			recv, err := tr.AllToAll(ctx, send)
			if err != nil {
				return err
			}
			for from, data := range recv {
				if want := fmt.Sprintf("%d->%d", from, tr.Rank()); string(data) != want {
					return fmt.Errorf("rank %d from %d: got %q, want %q", tr.Rank(), from, data, want)
				}
			}
			out, err := tr.AllReduce(ctx, transport.OpMax, []int64{int64(tr.Rank()), -int64(tr.Rank())})
			if err != nil {
				return err
			}
			if out[0] != size-1 || out[1] != 0 {
				return fmt.Errorf("rank %d: reduced %v", tr.Rank(), out)
			}
			return tr.Barrier(ctx)
		})
	}
	require.NoError(t, eg.Wait())
}

func TestUnknownPeer(t *testing.T) {
	mesh, err := mocknet.FullMeshConnected(2)
	require.NoError(t, err)
	defer mesh.Close()
	_, err = New(mesh.Hosts()[0], []peer.ID{mesh.Hosts()[1].ID()}, DefaultConfig())
	require.ErrorIs(t, err, ErrUnknownPeer)
}

func TestMessageTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMessageSize = 16
	group := newGroup(t, 2, cfg)
	err := group[0].Send(context.Background(), 1, &transport.Message{Data: make([]byte, 32)})
	require.ErrorIs(t, err, ErrMessageTooLarge)
	require.ErrorIs(t, group[0].Send(context.Background(), 2, &transport.Message{}), transport.ErrBadRank)
}

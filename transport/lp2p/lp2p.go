// Package lp2p connects collective endpoints over libp2p streams.
//
// Every message travels on its own stream as a uvarint length followed by the
// scale encoded transport.Message.
package lp2p

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/multiformats/go-varint"
	"go.uber.org/zap"

	"github.com/meshsim/ghostsync/codec"
	"github.com/meshsim/ghostsync/transport"
)

// ProtocolID is the default protocol for collective messages.
const ProtocolID = "/ghostsync/collective/1"

var (
	// ErrUnknownPeer is returned when the host is not part of the group.
	ErrUnknownPeer = errors.New("peer is not part of the group")
	// ErrMessageTooLarge is returned for messages above Config.MaxMessageSize.
	ErrMessageTooLarge = errors.New("message too large")
)

// Config configures the libp2p transport.
type Config struct {
	Protocol string `mapstructure:"protocol"`
	// Timeout bounds writing or reading a single message stream.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxMessageSize bounds the encoded size of a message.
	MaxMessageSize uint64 `mapstructure:"max-message-size"`
}

// DefaultConfig returns the default libp2p transport configuration.
func DefaultConfig() Config {
	return Config{
		Protocol:       ProtocolID,
		Timeout:        30 * time.Second,
		MaxMessageSize: 256 << 20,
	}
}

// Opt configures a Transport.
type Opt func(*Transport)

// WithLogger specifies the logger for the transport and its endpoint.
func WithLogger(logger *zap.Logger) Opt {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithEndpointOpts passes options to the underlying endpoint.
func WithEndpointOpts(opts ...transport.Opt) Opt {
	return func(t *Transport) {
		t.endpointOpts = append(t.endpointOpts, opts...)
	}
}

// Transport is a collective endpoint whose ranks are libp2p peers.
type Transport struct {
	*transport.Endpoint

	logger       *zap.Logger
	endpointOpts []transport.Opt
	cfg          Config
	h            host.Host
	peers        []peer.ID
}

// New creates the endpoint of h in the group peers. The rank of a peer is its
// index in peers, which must be the same list on every peer.
func New(h host.Host, peers []peer.ID, cfg Config, opts ...Opt) (*Transport, error) {
	rank := slices.Index(peers, h.ID())
	if rank < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPeer, h.ID())
	}
	t := &Transport{
		logger: zap.NewNop(),
		cfg:    cfg,
		h:      h,
		peers:  slices.Clone(peers),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(zap.Int("rank", rank), zap.String("protocol", cfg.Protocol))
	endpointOpts := append([]transport.Opt{transport.WithLogger(t.logger)}, t.endpointOpts...)
	t.Endpoint = transport.NewEndpoint(rank, len(peers), t, endpointOpts...)
	h.SetStreamHandler(protocol.ID(cfg.Protocol), t.handle)
	return t, nil
}

// Close stops accepting messages and fails pending collectives.
func (t *Transport) Close() error {
	t.h.RemoveStreamHandler(protocol.ID(t.cfg.Protocol))
	return t.Endpoint.Close()
}

// Send implements transport.Link.
func (t *Transport) Send(ctx context.Context, to int, msg *transport.Message) error {
	if to < 0 || to >= len(t.peers) {
		return fmt.Errorf("%w: send to %d", transport.ErrBadRank, to)
	}
	buf, err := codec.Encode(msg)
	if err != nil {
		return err
	}
	if uint64(len(buf)) > t.cfg.MaxMessageSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, len(buf), t.cfg.MaxMessageSize)
	}
	pid := t.peers[to]
	stream, err := t.h.NewStream(ctx, pid, protocol.ID(t.cfg.Protocol))
	if err != nil {
		return fmt.Errorf("open stream to %s: %w", pid, err)
	}
	if t.cfg.Timeout > 0 {
		stream.SetWriteDeadline(time.Now().Add(t.cfg.Timeout))
	}
	wr := bufio.NewWriter(stream)
	if _, err := wr.Write(varint.ToUvarint(uint64(len(buf)))); err != nil {
		stream.Reset()
		return fmt.Errorf("peer %s: %w", pid, err)
	}
	if _, err := wr.Write(buf); err != nil {
		stream.Reset()
		return fmt.Errorf("peer %s: %w", pid, err)
	}
	if err := wr.Flush(); err != nil {
		stream.Reset()
		return fmt.Errorf("peer %s: %w", pid, err)
	}
	return stream.Close()
}

func (t *Transport) handle(stream network.Stream) {
	remote := stream.Conn().RemotePeer()
	from := slices.Index(t.peers, remote)
	if from < 0 {
		t.logger.Debug("message from peer outside the group", zap.Stringer("peer", remote))
		stream.Reset()
		return
	}
	if t.cfg.Timeout > 0 {
		stream.SetReadDeadline(time.Now().Add(t.cfg.Timeout))
	}
	msg, err := t.read(stream)
	if err != nil {
		t.logger.Debug("failed to read message",
			zap.Int("from", from),
			zap.Stringer("peer", remote),
			zap.Error(err),
		)
		stream.Reset()
		return
	}
	stream.Close()
	if err := t.Deliver(from, msg); err != nil {
		t.logger.Warn("message rejected",
			zap.Int("from", from),
			zap.Uint64("seq", msg.Seq),
			zap.Error(err),
		)
	}
}

func (t *Transport) read(stream network.Stream) (*transport.Message, error) {
	rd := bufio.NewReader(stream)
	size, err := varint.ReadUvarint(rd)
	if err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}
	if size > t.cfg.MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, size, t.cfg.MaxMessageSize)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}
	var msg transport.Message
	if err := codec.Decode(buf, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

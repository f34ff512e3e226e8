// Package sim drives ghost entry spaces through a 1-D domain decomposition.
//
// Rank r initially owns a contiguous block of global ids and ghosts Halo ids
// on each side of it. Every round owners move entries to neighbors, remove
// entries everywhere and create replacements, then all ranks negotiate,
// write owner values, synchronize, and check that every ghost holds its
// owner's value and that every global id has a single owner.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/meshsim/ghostsync/ghost"
	"github.com/meshsim/ghostsync/ghost/channel"
	"github.com/meshsim/ghostsync/log"
	"github.com/meshsim/ghostsync/transport"
	"github.com/meshsim/ghostsync/transport/lp2p"
)

// ErrVerify is returned when a round ends in an inconsistent state.
var ErrVerify = errors.New("verification failed")

// Opt configures a simulation run.
type Opt func(*runner)

// WithLogger specifies the logger for the run.
func WithLogger(logger *zap.Logger) Opt {
	return func(r *runner) {
		r.logger = logger
	}
}

// WithGhostLogger specifies the logger of the entry spaces and sync engines.
// Defaults to the run logger.
func WithGhostLogger(logger *zap.Logger) Opt {
	return func(r *runner) {
		r.ghostLogger = logger
	}
}

// WithTransportLogger specifies the logger of the collective endpoints.
// Defaults to the run logger.
func WithTransportLogger(logger *zap.Logger) Opt {
	return func(r *runner) {
		r.transportLogger = logger
	}
}

// WithGhostConfig specifies the entry space configuration of every rank.
func WithGhostConfig(cfg ghost.Config) Opt {
	return func(r *runner) {
		r.ghostCfg = cfg
	}
}

// WithP2PConfig specifies the libp2p transport configuration for the p2p
// transport.
func WithP2PConfig(cfg lp2p.Config) Opt {
	return func(r *runner) {
		r.p2pCfg = cfg
	}
}

// WithEndpointOpts passes options to the collective endpoint of every rank.
func WithEndpointOpts(opts ...transport.Opt) Opt {
	return func(r *runner) {
		r.endpointOpts = append(r.endpointOpts, opts...)
	}
}

// Report summarizes a run.
type Report struct {
	Rounds int
	// Entries and Ghosts count slots over all ranks after the last round.
	Entries int
	Ghosts  int
	Moves   int
	Removes int
	Adopted int
	Evicted int
	// SyncBytes is the record payload exchanged between ranks.
	SyncBytes int
	Duration  time.Duration
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r *Report) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("rounds", r.Rounds)
	enc.AddInt("entries", r.Entries)
	enc.AddInt("ghosts", r.Ghosts)
	enc.AddInt("moves", r.Moves)
	enc.AddInt("removes", r.Removes)
	enc.AddInt("adopted", r.Adopted)
	enc.AddInt("evicted", r.Evicted)
	enc.AddInt("sync_bytes", r.SyncBytes)
	enc.AddDuration("duration", r.Duration)
	return nil
}

// record is the value mirrored for every entry.
type record struct {
	GlobalID uint64
	Round    uint64
}

type rankState struct {
	rank   int
	logger *zap.Logger
	rng    *rand.Rand
	tr     ghost.Transport
	space  *ghost.EntrySpace
	engine *ghost.SyncEngine
	values *channel.Fixed[record]
	// next fresh global id and the end of this rank's fresh id range
	fresh, freshEnd ghost.GlobalID
}

type runner struct {
	cfg             Config
	logger          *zap.Logger
	ghostLogger     *zap.Logger
	transportLogger *zap.Logger
	ghostCfg        ghost.Config
	p2pCfg          lp2p.Config
	endpointOpts    []transport.Opt

	ranks   []*rankState
	closers []io.Closer
	report  Report
}

// Run executes a simulation.
func Run(ctx context.Context, cfg Config, opts ...Opt) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &runner{
		cfg:      cfg,
		logger:   zap.NewNop(),
		ghostCfg: ghost.DefaultConfig(),
		p2pCfg:   lp2p.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.ghostLogger == nil {
		r.ghostLogger = r.logger
	}
	if r.transportLogger == nil {
		r.transportLogger = r.logger
	}
	defer r.close()
	start := time.Now()
	if err := r.setup(); err != nil {
		return nil, err
	}
	if err := r.populate(ctx); err != nil {
		return nil, err
	}
	for round := 1; round <= cfg.Rounds; round++ {
		if err := r.round(ctx, round); err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		r.report.Rounds = round
	}
	for _, st := range r.ranks {
		r.report.Ghosts += st.space.Plan().Ghosts()
		for range st.space.Slots() {
			r.report.Entries++
		}
	}
	r.report.Duration = time.Since(start)
	return &r.report, nil
}

func (r *runner) close() {
	for _, c := range r.closers {
		c.Close()
	}
}

func (r *runner) transports() ([]ghost.Transport, error) {
	opts := append([]transport.Opt{transport.WithMetrics()}, r.endpointOpts...)
	trs := make([]ghost.Transport, r.cfg.Ranks)
	switch r.cfg.Transport {
	case TransportLocal:
		local := append([]transport.Opt{transport.WithLogger(r.transportLogger)}, opts...)
		for i, e := range transport.NewLocalGroup(r.cfg.Ranks, local...) {
			trs[i] = e
			r.closers = append(r.closers, e)
		}
	case TransportP2P:
		mesh, err := mocknet.FullMeshConnected(r.cfg.Ranks)
		if err != nil {
			return nil, fmt.Errorf("create mesh: %w", err)
		}
		r.closers = append(r.closers, mesh)
		hosts := mesh.Hosts()
		peers := make([]peer.ID, len(hosts))
		for i, h := range hosts {
			peers[i] = h.ID()
		}
		for i, h := range hosts {
			tr, err := lp2p.New(h, peers, r.p2pCfg,
				lp2p.WithLogger(r.transportLogger),
				lp2p.WithEndpointOpts(opts...),
			)
			if err != nil {
				return nil, err
			}
			trs[i] = tr
			// close before the mesh
			r.closers = append([]io.Closer{tr}, r.closers...)
		}
	}
	return trs, nil
}

func (r *runner) setup() error {
	trs, err := r.transports()
	if err != nil {
		return err
	}
	// fresh ids start above the initial domain, every rank gets its own range
	base := ghost.GlobalID(r.cfg.Ranks * r.cfg.Entries)
	span := ghost.GlobalID(r.cfg.Entries * (r.cfg.Rounds + 1))
	for rank, tr := range trs {
		logger := log.Rank(r.logger, rank)
		ghostLogger := log.Rank(r.ghostLogger, rank)
		values, err := channel.New[record](0)
		if err != nil {
			return err
		}
		st := &rankState{
			rank:     rank,
			logger:   logger,
			rng:      rand.New(rand.NewPCG(r.cfg.Seed, uint64(rank))),
			tr:       tr,
			space:    ghost.NewEntrySpace(tr, ghost.WithLogger(ghostLogger), ghost.WithConfig(r.ghostCfg)),
			engine:   ghost.NewSyncEngine(tr, ghost.WithSyncLogger(ghostLogger)),
			values:   values,
			fresh:    base + ghost.GlobalID(rank)*span,
			freshEnd: base + ghost.GlobalID(rank+1)*span,
		}
		if err := st.space.Register(values); err != nil {
			return err
		}
		r.ranks = append(r.ranks, st)
	}
	return nil
}

// collective runs fn for every rank concurrently.
func (r *runner) collective(ctx context.Context, fn func(ctx context.Context, st *rankState) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, st := range r.ranks {
		eg.Go(func() error {
			if err := fn(ctx, st); err != nil {
				return fmt.Errorf("rank %d: %w", st.rank, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// populate builds the initial block decomposition.
func (r *runner) populate(ctx context.Context) error {
	entries := r.cfg.Entries
	err := r.collective(ctx, func(ctx context.Context, st *rankState) error {
		first := st.rank * entries
		for gid := first; gid < first+entries; gid++ {
			if _, err := st.space.AddGlobal(ghost.GlobalID(gid), st.rank); err != nil {
				return err
			}
		}
		if st.rank > 0 {
			for gid := first - r.cfg.Halo; gid < first; gid++ {
				if _, err := st.space.AddGlobal(ghost.GlobalID(gid), st.rank-1); err != nil {
					return err
				}
			}
		}
		if st.rank < r.cfg.Ranks-1 {
			next := first + entries
			for gid := next; gid < next+r.cfg.Halo; gid++ {
				if _, err := st.space.AddGlobal(ghost.GlobalID(gid), st.rank+1); err != nil {
					return err
				}
			}
		}
		_, err := st.space.Negotiate(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}
	return r.verifyOwners()
}

func (r *runner) round(ctx context.Context, round int) error {
	counts := make([][4]int, len(r.ranks))
	err := r.collective(ctx, func(ctx context.Context, st *rankState) error {
		moves, removes, err := r.mutate(st)
		if err != nil {
			return err
		}
		report, err := st.space.Negotiate(ctx)
		if err != nil {
			return err
		}
		counts[st.rank] = [4]int{moves, removes, len(report.Adopted), len(report.Evicted)}
		st.values.Resize(st.space.Len())
		for lid, s := range st.space.Slots() {
			if s.Updatable {
				st.values.Set(lid, record{GlobalID: uint64(s.GlobalID), Round: uint64(round)})
			}
		}
		if err := st.engine.SynchronizeAll(ctx, st.space); err != nil {
			return err
		}
		for lid, s := range st.space.Slots() {
			want := record{GlobalID: uint64(s.GlobalID), Round: uint64(round)}
			if got := st.values.Get(lid); got != want {
				return fmt.Errorf("%w: local id %d holds %+v, owner %d wrote %+v", ErrVerify, lid, got, s.Owner, want)
			}
		}
		st.logger.Debug("round done",
			zap.Int("round", round),
			zap.Int("moves", moves),
			zap.Int("removes", removes),
			zap.Object("negotiation", report),
		)
		return nil
	})
	if err != nil {
		return err
	}
	for _, st := range r.ranks {
		plan := st.space.Plan()
		for peer := range plan.Send {
			r.report.SyncBytes += plan.SendCount(peer) * st.values.RecordSize()
		}
	}
	for _, c := range counts {
		r.report.Moves += c[0]
		r.report.Removes += c[1]
		r.report.Adopted += c[2]
		r.report.Evicted += c[3]
	}
	return r.verifyOwners()
}

// mutate applies this round's random moves and removals on owned entries and
// replaces removed entries with fresh ones.
func (r *runner) mutate(st *rankState) (moves, removes int, err error) {
	var owned []ghost.LocalID
	for lid, s := range st.space.Slots() {
		if s.Updatable {
			owned = append(owned, lid)
		}
	}
	for _, lid := range owned {
		switch p := st.rng.Float64(); {
		case p < r.cfg.RemoveFraction:
			if err := st.space.RemoveLocal(lid, true); err != nil {
				return moves, removes, err
			}
			removes++
		case p < r.cfg.RemoveFraction+r.cfg.MoveFraction:
			target, ok := r.neighbor(st)
			if !ok {
				continue
			}
			if err := st.space.MoveLocal(lid, target, st.rng.IntN(2) == 0); err != nil {
				return moves, removes, err
			}
			moves++
		}
	}
	for range removes {
		if st.fresh == st.freshEnd {
			break
		}
		lid, err := st.space.AddLocal(false)
		if err != nil {
			return moves, removes, err
		}
		if err := st.space.AssignGlobal(lid, st.fresh, st.rank); err != nil {
			return moves, removes, err
		}
		st.fresh++
	}
	return moves, removes, nil
}

func (r *runner) neighbor(st *rankState) (int, bool) {
	switch {
	case r.cfg.Ranks == 1:
		return 0, false
	case st.rank == 0:
		return 1, true
	case st.rank == r.cfg.Ranks-1:
		return st.rank - 1, true
	case st.rng.IntN(2) == 0:
		return st.rank - 1, true
	default:
		return st.rank + 1, true
	}
}

// verifyOwners checks that every committed global id has exactly one owner
// and that ghosts name it.
func (r *runner) verifyOwners() error {
	owners := map[ghost.GlobalID]int{}
	for _, st := range r.ranks {
		for _, s := range st.space.Slots() {
			if !s.Updatable {
				continue
			}
			if prev, ok := owners[s.GlobalID]; ok {
				return fmt.Errorf("%w: global id %s owned by ranks %d and %d", ErrVerify, s.GlobalID, prev, st.rank)
			}
			owners[s.GlobalID] = st.rank
		}
	}
	for _, st := range r.ranks {
		for _, s := range st.space.Slots() {
			if s.Updatable {
				continue
			}
			owner, ok := owners[s.GlobalID]
			if !ok || owner != s.Owner {
				return fmt.Errorf("%w: rank %d ghosts global id %s from rank %d", ErrVerify, st.rank, s.GlobalID, s.Owner)
			}
		}
	}
	return nil
}

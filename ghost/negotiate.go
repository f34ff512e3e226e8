package ghost

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meshsim/ghostsync/codec"
	"github.com/meshsim/ghostsync/transport"
)

// NegotiationReport summarizes a negotiation round on this rank.
type NegotiationReport struct {
	// Fast is set when no rank had pending mutations and the plan was kept.
	Fast bool
	// Claims is the number of claims this rank sent.
	Claims int
	// Ghosts is the number of local slots receiving records.
	Ghosts int
	// Sends is the number of records this rank sends per synchronization.
	Sends int
	// Adopted lists the owner slots allocated for entries moved to this rank.
	Adopted []LocalID
	// Evicted lists the local ids freed by global removals.
	Evicted []LocalID
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r *NegotiationReport) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("fast", r.Fast)
	enc.AddInt("claims", r.Claims)
	enc.AddInt("ghosts", r.Ghosts)
	enc.AddInt("sends", r.Sends)
	enc.AddInt("adopted", len(r.Adopted))
	enc.AddInt("evicted", len(r.Evicted))
	return nil
}

// Negotiate commits the buffered mutations of every rank and replaces the
// communication plan. It is collective: every rank must call it, in the same
// order relative to other collective calls.
//
// Either every rank commits or none does. On failure the committed view and
// the plan are unchanged and the pending mutations are kept, so the caller
// may fix them or call Rollback. Consistency failures are reported on every
// rank: the rank that detected the problem returns the specific error, an
// ownership conflict is returned identically everywhere, and the remaining
// ranks return ErrPeerAborted.
func (es *EntrySpace) Negotiate(ctx context.Context) (*NegotiationReport, error) {
	defer es.hold()()
	start := time.Now()

	total, err := es.tr.AllReduce(ctx, transport.OpSum, []int64{int64(len(es.pending))})
	if err != nil {
		return nil, fmt.Errorf("reduce pending mutations: %w", err)
	}
	if total[0] == 0 {
		negotiationsFast.Inc()
		es.logger.Debug("negotiation skipped, nothing pending")
		return &NegotiationReport{Fast: true, Ghosts: es.plan.Ghosts(), Sends: sendTotal(es.plan)}, nil
	}

	n := &negotiation{EntrySpace: es, report: &NegotiationReport{}}
	plan, err := n.run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		negotiationsFailed.Inc()
		negotiationLatency.WithLabelValues("failed").Observe(elapsed.Seconds())
		es.logger.Warn("negotiation failed",
			zap.Int("pending", len(es.pending)),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}
	es.commit(n.draft, n.draftFree, plan)
	n.report.Ghosts = plan.Ghosts()
	n.report.Sends = sendTotal(plan)
	negotiationsCommitted.Inc()
	negotiationLatency.WithLabelValues("committed").Observe(elapsed.Seconds())
	es.logger.Debug("negotiation committed",
		zap.Object("report", n.report),
		zap.Int("len", es.Len()),
		zap.Duration("duration", elapsed),
	)
	return n.report, nil
}

func sendTotal(p *Plan) int {
	n := 0
	for _, lids := range p.Send {
		n += len(lids)
	}
	return n
}

func (es *EntrySpace) commit(draft []slot, free freeList, plan *Plan) {
	end := len(draft)
	for end > 0 && !draft[end-1].live {
		end--
	}
	free.trim(LocalID(end))
	es.staged = draft[:end]
	es.stagedFree = free
	es.slots = slices.Clone(es.staged)
	es.free = free.clone()
	es.pending = nil
	es.plan = plan
	es.upToDate = true
}

// negotiation holds the state of one round.
type negotiation struct {
	*EntrySpace
	report *NegotiationReport

	domain uint64
	draft  []slot
	// draftFree allocates the owner slots adopted in this round.
	draftFree freeList
	adopted   map[GlobalID]LocalID
}

func (n *negotiation) run(ctx context.Context) (*Plan, error) {
	claims, err := n.collectClaims(ctx)
	if err != nil {
		return nil, err
	}
	directives, routes, err := n.phaseA(ctx, claims)
	if err != nil {
		return nil, err
	}
	plan := newPlan(n.size)
	// local failures in phase B and C are held back until every rank has
	// gone through both exchanges
	failure := n.phaseB(ctx, directives, plan)
	if errors.Is(failure, errTransportFailed) {
		return nil, failure
	}
	if err := n.phaseC(ctx, routes, plan, failure != nil); err != nil {
		if errors.Is(err, errTransportFailed) {
			return nil, err
		}
		if failure == nil {
			failure = err
		}
	}
	status := int64(0)
	if failure != nil {
		status = 1
	}
	if err := n.agree(ctx, status, failure); err != nil {
		return nil, err
	}
	return plan, nil
}

// errTransportFailed marks errors that leave ranks out of step. They are
// returned without any further collective call.
var errTransportFailed = errors.New("transport failed")

func transportError(phase string, err error) error {
	return fmt.Errorf("%w: %s: %w", errTransportFailed, phase, err)
}

// agree reduces a local failure flag. Ranks that failed return their own
// error, the others ErrPeerAborted.
func (n *negotiation) agree(ctx context.Context, status int64, local error) error {
	out, err := n.tr.AllReduce(ctx, transport.OpMax, []int64{status})
	if err != nil {
		return transportError("reduce status", err)
	}
	switch {
	case local != nil:
		return local
	case out[0] != 0:
		return ErrPeerAborted
	}
	return nil
}

// collectClaims builds the claims for the whole staged view and sizes the
// global id domain.
func (n *negotiation) collectClaims(ctx context.Context) ([]claim, error) {
	var (
		claims   = make([]claim, 0, len(n.staged)+len(n.pending))
		maxGid   = int64(-1)
		maxOwner = int64(-1)
		invalid  int64
	)
	add := func(c claim) {
		claims = append(claims, c)
		maxGid = max(maxGid, int64(c.GlobalID))
		if c.Owner != noWireRank {
			maxOwner = max(maxOwner, int64(c.Owner))
		}
	}
	for lid, s := range n.staged {
		if !s.live {
			continue
		}
		if s.gid == InvalidGlobalID {
			invalid = 1
			continue
		}
		c := claim{GlobalID: uint64(s.gid), Owner: toWireRank(s.owner), LocalID: uint32(lid)}
		if s.updatable {
			c.Flags |= claimUpdatable
		}
		if s.moved {
			c.Flags |= claimTransfer
		}
		add(c)
	}
	for _, m := range n.pending {
		switch {
		case m.kind == mutationMove && !m.keep,
			m.kind == mutationRemove && m.keep && !m.all:
			if m.gid == InvalidGlobalID {
				invalid = 1
				continue
			}
			add(claim{GlobalID: uint64(m.gid), Owner: toWireRank(m.rank), LocalID: uint32(NoLocalID), Flags: claimTransfer})
		case m.kind == mutationRemove && m.all:
			if m.gid == InvalidGlobalID {
				continue
			}
			add(claim{GlobalID: uint64(m.gid), Owner: noWireRank, LocalID: uint32(NoLocalID), Flags: claimEvict})
		}
	}

	out, err := n.tr.AllReduce(ctx, transport.OpMax, []int64{maxGid, maxOwner, invalid})
	if err != nil {
		return nil, transportError("reduce domain", err)
	}
	switch {
	case out[2] != 0:
		if invalid != 0 {
			return nil, fmt.Errorf("%w: assign global ids to slots added with AddLocal", ErrInvalidGlobalID)
		}
		return nil, ErrInvalidGlobalID
	case out[1] >= int64(n.size):
		return nil, fmt.Errorf("%w: %d with %d ranks", ErrInvalidRank, out[1], n.size)
	}
	n.domain = uint64(out[0] + 1)
	n.report.Claims = len(claims)
	claimsSent.Add(float64(len(claims)))
	return claims, nil
}

// phaseA sends every claim to the rank negotiating its global id and resolves
// the claims received. It returns the directives for every claimant and the
// routes for every owner, indexed by destination rank.
func (n *negotiation) phaseA(ctx context.Context, claims []claim) ([][]directive, [][]route, error) {
	buckets := make([][]claim, n.size)
	for _, c := range claims {
		r := BucketOf(GlobalID(c.GlobalID), n.domain, n.size)
		buckets[r] = append(buckets[r], c)
	}
	var (
		send    = make([][]byte, n.size)
		corrupt error
	)
	for r, bucket := range buckets {
		buf, err := codec.EncodeSlice(bucket, n.cfg.MaxMessageItems)
		if err != nil {
			// peers still expect a message, they learn about the failure
			// from the status reduction
			corrupt = fmt.Errorf("%w: claims for rank %d: %w", ErrMessageLimit, r, err)
			buf = codec.MustEncodeSlice[claim](nil, n.cfg.MaxMessageItems)
		}
		send[r] = buf
	}
	recv, err := n.tr.AllToAll(ctx, send)
	if err != nil {
		return nil, nil, transportError("exchange claims", err)
	}

	var received []claim
	for from, buf := range recv {
		if corrupt != nil {
			break
		}
		got, err := codec.DecodeSlice[claim](buf, n.cfg.MaxMessageItems)
		if err != nil {
			corrupt = fmt.Errorf("%w: claims from rank %d: %w", ErrCorrupt, from, err)
			continue
		}
		for i := range got {
			got[i].rank = from
		}
		received = append(received, got...)
	}
	var (
		directives [][]directive
		routes     [][]route
		conflict   *OwnershipConflictError
	)
	if corrupt == nil {
		directives, routes, conflict = n.resolve(received)
	}
	n.logger.Debug("claims resolved",
		zap.Int("sent", len(claims)),
		zap.Int("received", len(received)),
		zap.Bool("conflict", conflict != nil),
	)

	status := []int64{0, 0}
	if conflict != nil {
		status[0] = int64(conflict.GlobalID) + 1
	}
	if corrupt != nil {
		status[1] = 1
	}
	out, err := n.tr.AllReduce(ctx, transport.OpMax, status)
	if err != nil {
		return nil, nil, transportError("reduce conflicts", err)
	}
	if out[0] != 0 {
		gid := GlobalID(out[0] - 1)
		owners := int64(0)
		if conflict != nil && conflict.GlobalID == gid {
			owners = int64(conflict.Owners)
		}
		out, err := n.tr.AllReduce(ctx, transport.OpMax, []int64{owners})
		if err != nil {
			return nil, nil, transportError("reduce conflicts", err)
		}
		return nil, nil, &OwnershipConflictError{GlobalID: gid, Owners: int(out[0])}
	}
	if out[1] != 0 {
		if corrupt != nil {
			return nil, nil, corrupt
		}
		return nil, nil, ErrPeerAborted
	}
	return directives, routes, nil
}

// resolve decides the owner of every global id claimed in this rank's bucket.
// It reports the largest conflicting global id, if any.
func (n *negotiation) resolve(claims []claim) ([][]directive, [][]route, *OwnershipConflictError) {
	slices.SortFunc(claims, func(a, b claim) int {
		return cmp.Or(
			cmp.Compare(a.GlobalID, b.GlobalID),
			cmp.Compare(a.rank, b.rank),
			cmp.Compare(a.LocalID, b.LocalID),
		)
	})
	var (
		directives = make([][]directive, n.size)
		routes     = make([][]route, n.size)
		conflict   *OwnershipConflictError
	)
	for len(claims) > 0 {
		end := 1
		for end < len(claims) && claims[end].GlobalID == claims[0].GlobalID {
			end++
		}
		group := claims[:end]
		claims = claims[end:]
		if owners, ok := n.resolveOne(group, directives, routes); !ok {
			conflict = &OwnershipConflictError{GlobalID: GlobalID(group[0].GlobalID), Owners: owners}
		}
	}
	return directives, routes, conflict
}

// resolveOne appends the directives and routes for the claims of one global
// id. On conflict it returns the number of competing owners and false.
func (n *negotiation) resolveOne(group []claim, directives [][]directive, routes [][]route) (int, bool) {
	gid := group[0].GlobalID
	if slices.ContainsFunc(group, claim.evict) {
		for _, c := range group {
			if c.slotted() {
				directives[c.rank] = append(directives[c.rank],
					directive{Kind: directiveEvict, GlobalID: gid, LocalID: c.LocalID})
			}
		}
		return 0, true
	}

	var (
		targets   []uint32
		updatable int
		owner     = -1
	)
	for i := range group {
		c := &group[i]
		if c.transfer() && !slices.Contains(targets, c.Owner) {
			targets = append(targets, c.Owner)
		}
		if c.updatable() {
			updatable++
			owner = i
		}
	}
	if len(targets) > 1 {
		return len(targets), false
	}

	var ownerRank int
	ownerLID := uint32(NoLocalID)
	if len(targets) == 1 {
		if updatable != 0 {
			return updatable + 1, false
		}
		ownerRank = int(targets[0])
		owner = slices.IndexFunc(group, func(c claim) bool { return c.rank == ownerRank && c.slotted() })
		if owner >= 0 {
			ownerLID = group[owner].LocalID
			directives[ownerRank] = append(directives[ownerRank],
				directive{Kind: directivePromote, GlobalID: gid, LocalID: ownerLID})
		} else {
			directives[ownerRank] = append(directives[ownerRank],
				directive{Kind: directiveAdopt, GlobalID: gid, LocalID: uint32(NoLocalID)})
		}
	} else {
		if updatable != 1 {
			return updatable, false
		}
		ownerRank = group[owner].rank
		ownerLID = group[owner].LocalID
	}

	for i, c := range group {
		if i == owner || !c.slotted() {
			continue
		}
		directives[c.rank] = append(directives[c.rank],
			directive{Kind: directiveRecv, GlobalID: gid, LocalID: c.LocalID, Peer: uint32(ownerRank)})
		routes[ownerRank] = append(routes[ownerRank],
			route{GlobalID: gid, OwnerLID: ownerLID, Peer: uint32(c.rank), PeerLID: c.LocalID})
	}
	return 1, true
}

// relayLimit bounds the directives or routes a bucket rank sends to one rank.
// It relays at most one of them per claim received and accepts at most
// MaxMessageItems claims from every rank.
func (n *negotiation) relayLimit() uint32 {
	return uint32(min(uint64(n.cfg.MaxMessageItems)*uint64(n.size), math.MaxUint32))
}

type entry struct {
	gid GlobalID
	lid LocalID
	// local is the id on this rank when lid is on the peer
	local LocalID
}

func compareEntries(a, b entry) int {
	return cmp.Or(cmp.Compare(a.gid, b.gid), cmp.Compare(a.lid, b.lid))
}

// phaseB delivers directives to claimants and applies them to a draft of the
// staged view. It fills the receive lists of plan.
func (n *negotiation) phaseB(ctx context.Context, directives [][]directive, plan *Plan) error {
	limit := n.relayLimit()
	send := make([][]byte, n.size)
	var failure error
	for r, ds := range directives {
		buf, err := codec.EncodeSlice(ds, limit)
		if err != nil {
			failure = fmt.Errorf("%w: directives for rank %d: %w", ErrMessageLimit, r, err)
			buf = codec.MustEncodeSlice[directive](nil, limit)
		}
		send[r] = buf
	}
	recv, err := n.tr.AllToAll(ctx, send)
	if err != nil {
		return transportError("exchange directives", err)
	}
	if failure != nil {
		return failure
	}

	n.draft = slices.Clone(n.staged)
	n.draftFree = n.stagedFree.clone()
	n.adopted = make(map[GlobalID]LocalID)

	var (
		received []directive
		from     []int
	)
	for r, buf := range recv {
		got, err := codec.DecodeSlice[directive](buf, limit)
		if err != nil {
			return fmt.Errorf("%w: directives from rank %d: %w", ErrCorrupt, r, err)
		}
		for range got {
			from = append(from, r)
		}
		received = append(received, got...)
	}

	ghosts := make([][]entry, n.size)
	var evicts []directive
	for i, d := range received {
		gid := GlobalID(d.GlobalID)
		switch d.Kind {
		case directiveRecv, directivePromote:
			s, err := n.draftSlot(d, from[i])
			if err != nil {
				return err
			}
			if d.Kind == directivePromote {
				s.owner = n.rank
				s.updatable = true
				s.moved = false
				continue
			}
			peer := fromWireRank(d.Peer)
			if peer < 0 || peer >= n.size {
				return fmt.Errorf("%w: directive from rank %d names rank %d", ErrCorrupt, from[i], peer)
			}
			s.owner = peer
			s.updatable = false
			s.moved = false
			ghosts[peer] = append(ghosts[peer], entry{gid: gid, lid: LocalID(d.LocalID)})
		case directiveAdopt:
			if _, ok := n.adopted[gid]; ok {
				return fmt.Errorf("%w: global id %s adopted twice", ErrCorrupt, gid)
			}
			lid, err := n.draftFree.alloc(n.cfg.MaxLocalIDs)
			if err != nil {
				return fmt.Errorf("adopt global id %s: %w", gid, err)
			}
			if int(lid) >= len(n.draft) {
				n.draft = append(n.draft, make([]slot, int(lid)+1-len(n.draft))...)
			}
			n.draft[lid] = slot{gid: gid, owner: n.rank, updatable: true, live: true}
			n.adopted[gid] = lid
			n.report.Adopted = append(n.report.Adopted, lid)
		case directiveEvict:
			if _, err := n.draftSlot(d, from[i]); err != nil {
				return err
			}
			evicts = append(evicts, d)
		default:
			return fmt.Errorf("%w: directive kind %d from rank %d", ErrCorrupt, d.Kind, from[i])
		}
	}
	for _, d := range evicts {
		n.draft[d.LocalID] = slot{}
		n.draftFree.release(LocalID(d.LocalID))
		n.report.Evicted = append(n.report.Evicted, LocalID(d.LocalID))
	}
	for peer, list := range ghosts {
		slices.SortFunc(list, compareEntries)
		plan.Recv[peer] = make([]LocalID, len(list))
		for i, e := range list {
			plan.Recv[peer][i] = e.lid
		}
	}
	return nil
}

func (n *negotiation) draftSlot(d directive, from int) (*slot, error) {
	lid := LocalID(d.LocalID)
	if int(lid) >= len(n.draft) || !n.draft[lid].live || n.draft[lid].gid != GlobalID(d.GlobalID) {
		return nil, fmt.Errorf("%w: directive from rank %d for local id %d of global id %d",
			ErrCorrupt, from, lid, d.GlobalID)
	}
	return &n.draft[lid], nil
}

// phaseC delivers routes to owners and fills the send lists of plan. It must
// run after phaseB, which resolves adopted local ids. With drain set the
// routes are exchanged and dropped.
func (n *negotiation) phaseC(ctx context.Context, routes [][]route, plan *Plan, drain bool) error {
	limit := n.relayLimit()
	send := make([][]byte, n.size)
	var failure error
	for r, rs := range routes {
		buf, err := codec.EncodeSlice(rs, limit)
		if err != nil {
			failure = fmt.Errorf("%w: routes for rank %d: %w", ErrMessageLimit, r, err)
			buf = codec.MustEncodeSlice[route](nil, limit)
		}
		send[r] = buf
	}
	recv, err := n.tr.AllToAll(ctx, send)
	if err != nil {
		return transportError("exchange routes", err)
	}
	if failure != nil {
		return failure
	}
	if drain {
		return nil
	}

	targets := make([][]entry, n.size)
	for from, buf := range recv {
		got, err := codec.DecodeSlice[route](buf, limit)
		if err != nil {
			return fmt.Errorf("%w: routes from rank %d: %w", ErrCorrupt, from, err)
		}
		for _, rt := range got {
			gid := GlobalID(rt.GlobalID)
			lid := LocalID(rt.OwnerLID)
			if lid == NoLocalID {
				adopted, ok := n.adopted[gid]
				if !ok {
					return fmt.Errorf("%w: route from rank %d for global id %s not adopted", ErrCorrupt, from, gid)
				}
				lid = adopted
			}
			if int(lid) >= len(n.draft) || !n.draft[lid].updatable || n.draft[lid].gid != gid {
				return fmt.Errorf("%w: route from rank %d for local id %d of global id %s",
					ErrCorrupt, from, lid, gid)
			}
			peer := fromWireRank(rt.Peer)
			if peer < 0 || peer >= n.size {
				return fmt.Errorf("%w: route from rank %d names rank %d", ErrCorrupt, from, peer)
			}
			targets[peer] = append(targets[peer], entry{gid: gid, lid: LocalID(rt.PeerLID), local: lid})
		}
	}
	for peer, list := range targets {
		slices.SortFunc(list, compareEntries)
		plan.Send[peer] = make([]LocalID, len(list))
		for i, e := range list {
			plan.Send[peer][i] = e.local
		}
	}
	return nil
}

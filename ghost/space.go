// Package ghost keeps ghost copies of distributed entries consistent with
// their owners.
//
// Each rank holds an EntrySpace mapping dense local ids to global ids. Some
// local slots are owned (updatable) and the others mirror an entry owned by
// another rank. Structural changes are buffered and committed collectively by
// EntrySpace.Negotiate, which also derives the communication Plan that
// SyncEngine uses to copy owner records into ghost slots.
package ghost

import (
	"fmt"
	"iter"
	"slices"

	"go.uber.org/zap"
)

type mutationKind uint8

const (
	mutationAddKnown mutationKind = iota + 1
	mutationAddLocal
	mutationMove
	mutationRemove
)

func (k mutationKind) String() string {
	switch k {
	case mutationAddKnown:
		return "add-known"
	case mutationAddLocal:
		return "add-local"
	case mutationMove:
		return "move"
	case mutationRemove:
		return "remove"
	}
	return fmt.Sprintf("mutation(%d)", uint8(k))
}

// mutation is a buffered structural change. gid is captured at the time of
// the call for moves and removals, because the slot may be reused before
// negotiation. A removal with keep set drops a slot that was staged to move
// away, so the transfer to rank still has to be announced.
type mutation struct {
	kind mutationKind
	lid  LocalID
	gid  GlobalID
	rank int
	keep bool
	all  bool
}

// Opt configures an EntrySpace.
type Opt func(es *EntrySpace)

// WithLogger specifies the logger for the EntrySpace.
func WithLogger(logger *zap.Logger) Opt {
	return func(es *EntrySpace) {
		es.logger = logger
	}
}

// WithConfig specifies the EntrySpace configuration.
func WithConfig(cfg Config) Opt {
	return func(es *EntrySpace) {
		es.cfg = cfg
	}
}

// EntrySpace is the per-rank bookkeeping of local slots and their global ids.
// It is not safe for concurrent use.
type EntrySpace struct {
	logger *zap.Logger
	cfg    Config
	tr     Transport
	rank   int
	size   int

	// committed view, as of the last successful negotiation
	slots []slot
	free  freeList

	// committed view with pending mutations applied
	staged     []slot
	stagedFree freeList
	pending    []mutation

	plan     *Plan
	upToDate bool
	frozen   bool
	channels []DataChannel
}

// NewEntrySpace creates an empty entry space negotiating over tr.
func NewEntrySpace(tr Transport, opts ...Opt) *EntrySpace {
	es := &EntrySpace{
		logger:   zap.NewNop(),
		cfg:      DefaultConfig(),
		tr:       tr,
		rank:     tr.Rank(),
		size:     tr.Size(),
		upToDate: true,
	}
	for _, opt := range opts {
		opt(es)
	}
	es.plan = newPlan(es.size)
	return es
}

// Rank returns the rank of this process.
func (es *EntrySpace) Rank() int { return es.rank }

// Size returns the number of ranks.
func (es *EntrySpace) Size() int { return es.size }

// Len returns the extent of the local id space. Registered channels must hold
// exactly Len records when they are synchronized.
func (es *EntrySpace) Len() int { return es.stagedFree.extent() }

// IsUpToDate reports whether the plan reflects every mutation.
func (es *EntrySpace) IsUpToDate() bool { return es.upToDate }

// Pending returns the number of buffered mutations.
func (es *EntrySpace) Pending() int { return len(es.pending) }

// Plan returns the current communication plan. It must not be modified.
func (es *EntrySpace) Plan() *Plan { return es.plan }

// Freeze forbids mutations until Unfreeze is called.
func (es *EntrySpace) Freeze() { es.frozen = true }

// Unfreeze allows mutations again.
func (es *EntrySpace) Unfreeze() { es.frozen = false }

// IsFrozen reports whether mutations are forbidden.
func (es *EntrySpace) IsFrozen() bool { return es.frozen }

// hold freezes the space and returns a function restoring the previous state.
func (es *EntrySpace) hold() func() {
	prev := es.frozen
	es.frozen = true
	return func() { es.frozen = prev }
}

// Slot returns the committed state of lid.
func (es *EntrySpace) Slot(lid LocalID) (Slot, bool) {
	if int(lid) >= len(es.slots) || !es.slots[lid].live {
		return Slot{}, false
	}
	s := es.slots[lid]
	return Slot{GlobalID: s.gid, Owner: s.owner, Updatable: s.updatable}, true
}

// Slots iterates over the committed live slots in local id order.
func (es *EntrySpace) Slots() iter.Seq2[LocalID, Slot] {
	return func(yield func(LocalID, Slot) bool) {
		for lid, s := range es.slots {
			if !s.live {
				continue
			}
			if !yield(LocalID(lid), Slot{GlobalID: s.gid, Owner: s.owner, Updatable: s.updatable}) {
				return
			}
		}
	}
}

// FreeLocalIDs returns the released local ids below Len that the next
// additions will reuse, most recently released last.
func (es *EntrySpace) FreeLocalIDs() []LocalID {
	return es.stagedFree.available()
}

func (es *EntrySpace) validRank(rank int) bool {
	return rank >= 0 && rank < es.size
}

func (es *EntrySpace) stagedSlot(lid LocalID) (*slot, error) {
	if int(lid) >= len(es.staged) || !es.staged[lid].live {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLocalID, lid)
	}
	return &es.staged[lid], nil
}

func (es *EntrySpace) allocate(s slot) (LocalID, error) {
	lid, err := es.stagedFree.alloc(es.cfg.MaxLocalIDs)
	if err != nil {
		return NoLocalID, err
	}
	if int(lid) >= len(es.staged) {
		es.staged = slices.Grow(es.staged, int(lid)+1-len(es.staged))
		es.staged = es.staged[:int(lid)+1]
	}
	es.staged[lid] = s
	return lid, nil
}

func (es *EntrySpace) record(m mutation) {
	es.pending = append(es.pending, m)
	es.upToDate = false
}

// AddGlobal buffers an entry whose global id and owner are already decided.
// The returned local id is usable immediately for sizing channels; the entry
// takes part in synchronization after the next negotiation.
func (es *EntrySpace) AddGlobal(gid GlobalID, owner int) (LocalID, error) {
	if es.frozen {
		return NoLocalID, ErrFrozen
	}
	if gid > MaxGlobalID {
		return NoLocalID, fmt.Errorf("%w: %s", ErrBadGlobalID, gid)
	}
	if !es.validRank(owner) {
		return NoLocalID, fmt.Errorf("%w: owner %d", ErrBadRank, owner)
	}
	lid, err := es.allocate(slot{gid: gid, owner: owner, updatable: owner == es.rank, live: true})
	if err != nil {
		return NoLocalID, err
	}
	es.record(mutation{kind: mutationAddKnown, lid: lid, gid: gid, rank: owner})
	return lid, nil
}

// AddLocal buffers a new entry originating at this rank. Its global id is
// unassigned: the caller must resolve it with AssignGlobal before the next
// negotiation, otherwise negotiation fails with ErrInvalidGlobalID on every
// rank.
func (es *EntrySpace) AddLocal(asGhost bool) (LocalID, error) {
	if es.frozen {
		return NoLocalID, ErrFrozen
	}
	s := slot{gid: InvalidGlobalID, owner: es.rank, updatable: true, live: true}
	if asGhost {
		s.owner = NoRank
		s.updatable = false
	}
	lid, err := es.allocate(s)
	if err != nil {
		return NoLocalID, err
	}
	es.record(mutation{kind: mutationAddLocal, lid: lid, gid: InvalidGlobalID, rank: s.owner})
	return lid, nil
}

// AssignGlobal sets the global id and owner of a slot created by AddLocal.
// It must be called before the slot is moved.
func (es *EntrySpace) AssignGlobal(lid LocalID, gid GlobalID, owner int) error {
	if es.frozen {
		return ErrFrozen
	}
	s, err := es.stagedSlot(lid)
	if err != nil {
		return err
	}
	if s.gid != InvalidGlobalID {
		return fmt.Errorf("%w: local id %d has global id %s", ErrAssigned, lid, s.gid)
	}
	if s.moved {
		return fmt.Errorf("%w: local id %d was moved before its global id was assigned", ErrNotOwner, lid)
	}
	if gid > MaxGlobalID {
		return fmt.Errorf("%w: %s", ErrBadGlobalID, gid)
	}
	if !es.validRank(owner) {
		return fmt.Errorf("%w: owner %d", ErrBadRank, owner)
	}
	s.gid = gid
	s.owner = owner
	s.updatable = owner == es.rank
	for i := len(es.pending) - 1; i >= 0; i-- {
		if m := &es.pending[i]; m.kind == mutationAddLocal && m.lid == lid {
			m.gid = gid
			m.rank = owner
			break
		}
	}
	es.upToDate = false
	return nil
}

// MoveLocal buffers an ownership transfer of an owned slot to newRank. With
// keepAsGhost the slot stays resident as a ghost of the new owner, otherwise
// its local id is released immediately. The new owner either promotes its
// ghost copy or allocates a fresh slot during negotiation.
func (es *EntrySpace) MoveLocal(lid LocalID, newRank int, keepAsGhost bool) error {
	if es.frozen {
		return ErrFrozen
	}
	s, err := es.stagedSlot(lid)
	if err != nil {
		return err
	}
	if !s.updatable {
		return fmt.Errorf("%w: local id %d", ErrNotOwner, lid)
	}
	if !es.validRank(newRank) {
		return fmt.Errorf("%w: new owner %d", ErrBadRank, newRank)
	}
	if newRank == es.rank {
		return nil
	}
	gid := s.gid
	if keepAsGhost {
		s.updatable = false
		s.owner = newRank
		s.moved = true
	} else {
		es.staged[lid] = slot{}
		es.stagedFree.release(lid)
	}
	es.record(mutation{kind: mutationMove, lid: lid, gid: gid, rank: newRank, keep: keepAsGhost})
	return nil
}

// RemoveLocal buffers the removal of a slot and releases its local id
// immediately. With onAllRanks every copy of the global id is evicted on every
// rank by the next negotiation.
func (es *EntrySpace) RemoveLocal(lid LocalID, onAllRanks bool) error {
	if es.frozen {
		return ErrFrozen
	}
	s, err := es.stagedSlot(lid)
	if err != nil {
		return err
	}
	m := mutation{kind: mutationRemove, lid: lid, gid: s.gid, all: onAllRanks}
	if s.moved {
		m.rank = s.owner
		m.keep = true
	}
	es.staged[lid] = slot{}
	es.stagedFree.release(lid)
	es.record(m)
	return nil
}

// Rollback drops every buffered mutation and restores the committed view.
func (es *EntrySpace) Rollback() {
	es.staged = slices.Clone(es.slots)
	es.stagedFree = es.free.clone()
	es.pending = nil
	es.upToDate = true
}

// Register adds a channel synchronized by SyncEngine.SynchronizeAll.
func (es *EntrySpace) Register(ch DataChannel) error {
	if ch.Stride() != 1 {
		return fmt.Errorf("%w: got %d", ErrStride, ch.Stride())
	}
	if ch.RecordSize() <= 0 {
		return fmt.Errorf("%w: got %d", ErrRecordSize, ch.RecordSize())
	}
	if slices.Contains(es.channels, ch) {
		return ErrAlreadyRegistered
	}
	es.channels = append(es.channels, ch)
	return nil
}

// Unregister removes a registered channel.
func (es *EntrySpace) Unregister(ch DataChannel) error {
	i := slices.Index(es.channels, ch)
	if i < 0 {
		return ErrNotRegistered
	}
	es.channels = slices.Delete(es.channels, i, i+1)
	return nil
}

// Channels returns the registered channels.
func (es *EntrySpace) Channels() []DataChannel {
	return slices.Clone(es.channels)
}

package ghost

import "math"

//go:generate scalegen -types claim,directive,route

const noWireRank = math.MaxUint32

func toWireRank(rank int) uint32 {
	if rank < 0 {
		return noWireRank
	}
	return uint32(rank)
}

func fromWireRank(rank uint32) int {
	if rank == noWireRank {
		return NoRank
	}
	return int(rank)
}

const (
	claimUpdatable uint8 = 1 << iota
	// claimTransfer hands ownership to Owner.
	claimTransfer
	// claimEvict removes the global id on every rank.
	claimEvict
)

// claim is sent in phase A to the rank negotiating GlobalID. It describes one
// local slot, or a slot-less intent when LocalID is NoLocalID.
type claim struct {
	GlobalID uint64
	Owner    uint32
	LocalID  uint32
	Flags    uint8

	rank int // source rank, filled on receipt
}

func (c claim) updatable() bool { return c.Flags&claimUpdatable != 0 }
func (c claim) transfer() bool  { return c.Flags&claimTransfer != 0 }
func (c claim) evict() bool     { return c.Flags&claimEvict != 0 }
func (c claim) slotted() bool   { return LocalID(c.LocalID) != NoLocalID }

const (
	// directiveRecv turns LocalID into a ghost receiving from Peer.
	directiveRecv uint8 = iota + 1
	// directivePromote makes LocalID the owner slot.
	directivePromote
	// directiveAdopt allocates a new owner slot for GlobalID.
	directiveAdopt
	// directiveEvict frees LocalID.
	directiveEvict
)

// directive is sent in phase B from the negotiating rank to a claimant.
type directive struct {
	Kind     uint8
	GlobalID uint64
	LocalID  uint32
	Peer     uint32
}

// route is sent in phase C to the owner of GlobalID: OwnerLID must be sent to
// PeerLID on rank Peer. OwnerLID is NoLocalID when the owner adopts the id in
// the same round.
type route struct {
	GlobalID uint64
	OwnerLID uint32
	Peer     uint32
	PeerLID  uint32
}

package ghost

import (
	"fmt"
	"math"
)

// GlobalID identifies an entry across all ranks.
type GlobalID uint64

// LocalID is a dense per-rank index into local record arrays.
type LocalID uint32

const (
	// InvalidGlobalID marks a slot whose global id was not assigned yet.
	InvalidGlobalID = GlobalID(math.MaxUint64)
	// MaxGlobalID is the largest usable global id. Ids travel through signed
	// reductions, so the top half of the range is unavailable.
	MaxGlobalID = GlobalID(math.MaxInt64 - 1)
	// NoLocalID marks a claim that does not refer to a local slot.
	NoLocalID = LocalID(math.MaxUint32)
	// NoRank marks an unknown owner.
	NoRank = -1
)

func (id GlobalID) String() string {
	if id == InvalidGlobalID {
		return "unassigned"
	}
	return fmt.Sprintf("%d", uint64(id))
}

// Slot is a snapshot of a committed local slot.
type Slot struct {
	GlobalID  GlobalID
	Owner     int
	Updatable bool
}

type slot struct {
	gid       GlobalID
	owner     int
	updatable bool
	live      bool
	// moved is set for an owned slot staged to transfer ownership while
	// staying resident as a ghost.
	moved bool
}

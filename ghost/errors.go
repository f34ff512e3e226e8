package ghost

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage groups local, recoverable misuse of the API. These errors are
	// returned before any collective call is issued.
	ErrUsage = errors.New("usage error")
	// ErrConsistency groups violations of the ownership invariant discovered
	// during negotiation. Every rank returns an error of this kind when any rank
	// detects one.
	ErrConsistency = errors.New("consistency error")
	// ErrResource groups local resource exhaustion.
	ErrResource = errors.New("resource error")
)

var (
	ErrFrozen            = fmt.Errorf("%w: entry space is frozen", ErrUsage)
	ErrStalePlan         = fmt.Errorf("%w: communication plan is stale", ErrUsage)
	ErrStride            = fmt.Errorf("%w: channel stride must be 1", ErrUsage)
	ErrRecordSize        = fmt.Errorf("%w: channel record size must be positive", ErrUsage)
	ErrChannelSize       = fmt.Errorf("%w: channel size does not match entry space", ErrUsage)
	ErrUnknownLocalID    = fmt.Errorf("%w: unknown local id", ErrUsage)
	ErrNotOwner          = fmt.Errorf("%w: slot is not owned by this rank", ErrUsage)
	ErrAssigned          = fmt.Errorf("%w: global id already assigned", ErrUsage)
	ErrBadRank           = fmt.Errorf("%w: rank out of range", ErrUsage)
	ErrBadGlobalID       = fmt.Errorf("%w: global id out of range", ErrUsage)
	ErrTransport         = fmt.Errorf("%w: transport does not match entry space", ErrUsage)
	ErrNotRegistered     = fmt.Errorf("%w: channel is not registered", ErrUsage)
	ErrAlreadyRegistered = fmt.Errorf("%w: channel is already registered", ErrUsage)

	ErrInvalidGlobalID = fmt.Errorf("%w: unassigned global id reached negotiation", ErrConsistency)
	ErrInvalidRank     = fmt.Errorf("%w: claimed owner rank out of range", ErrConsistency)
	ErrPeerAborted     = fmt.Errorf("%w: negotiation aborted by a peer rank", ErrConsistency)
	ErrCorrupt         = fmt.Errorf("%w: malformed negotiation message", ErrConsistency)
	ErrPayloadSize     = fmt.Errorf("%w: synchronization payload size mismatch", ErrConsistency)

	ErrLocalIDExhausted = fmt.Errorf("%w: local ids exhausted", ErrResource)
	ErrMessageLimit     = fmt.Errorf("%w: negotiation message exceeds the item limit", ErrResource)
)

// OwnershipConflictError reports a global id that ended a negotiation with
// zero or several owners.
type OwnershipConflictError struct {
	GlobalID GlobalID
	Owners   int
}

func (e *OwnershipConflictError) Error() string {
	return fmt.Sprintf("ownership conflict: global id %s has %d owners", e.GlobalID, e.Owners)
}

// Is makes OwnershipConflictError match ErrConsistency.
func (e *OwnershipConflictError) Is(target error) bool {
	return target == ErrConsistency
}

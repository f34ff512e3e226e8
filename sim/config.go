package sim

import (
	"errors"
	"fmt"
)

// Transport kinds.
const (
	TransportLocal = "local"
	TransportP2P   = "p2p"
)

// ErrConfig is returned for invalid simulation configurations.
var ErrConfig = errors.New("invalid simulation config")

// Config configures a simulation run.
type Config struct {
	// Ranks is the number of simulated processes.
	Ranks int `mapstructure:"ranks"`
	// Entries is the number of entries initially owned by each rank.
	Entries int `mapstructure:"entries"`
	// Halo is the number of ids ghosted from each neighbor block.
	Halo int `mapstructure:"halo"`
	// Rounds is the number of mutate, negotiate and synchronize rounds.
	Rounds int `mapstructure:"rounds"`
	// MoveFraction is the probability an owned entry moves to a neighbor in a
	// round.
	MoveFraction float64 `mapstructure:"move-fraction"`
	// RemoveFraction is the probability an owned entry is removed on all
	// ranks in a round. Removed entries are replaced by fresh ones.
	RemoveFraction float64 `mapstructure:"remove-fraction"`
	Seed           uint64  `mapstructure:"seed"`
	// Transport is either "local" or "p2p".
	Transport string `mapstructure:"transport"`
}

// DefaultConfig returns the default simulation configuration.
func DefaultConfig() Config {
	return Config{
		Ranks:          4,
		Entries:        1000,
		Halo:           16,
		Rounds:         10,
		MoveFraction:   0.01,
		RemoveFraction: 0.005,
		Seed:           1,
		Transport:      TransportLocal,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Ranks < 1:
		return fmt.Errorf("%w: ranks %d", ErrConfig, c.Ranks)
	case c.Entries < 1:
		return fmt.Errorf("%w: entries %d", ErrConfig, c.Entries)
	case c.Halo < 0 || c.Halo > c.Entries:
		return fmt.Errorf("%w: halo %d with %d entries", ErrConfig, c.Halo, c.Entries)
	case c.Rounds < 0:
		return fmt.Errorf("%w: rounds %d", ErrConfig, c.Rounds)
	case c.MoveFraction < 0 || c.MoveFraction > 1:
		return fmt.Errorf("%w: move fraction %v", ErrConfig, c.MoveFraction)
	case c.RemoveFraction < 0 || c.RemoveFraction > 1:
		return fmt.Errorf("%w: remove fraction %v", ErrConfig, c.RemoveFraction)
	case c.Transport != TransportLocal && c.Transport != TransportP2P:
		return fmt.Errorf("%w: transport %q", ErrConfig, c.Transport)
	}
	return nil
}

package ghost

// Config configures an EntrySpace.
type Config struct {
	// MaxLocalIDs bounds the local id space of a rank.
	MaxLocalIDs uint32 `mapstructure:"max-local-ids"`
	// MaxMessageItems bounds the number of claims, directives or routes
	// accepted from a single peer in one negotiation phase.
	MaxMessageItems uint32 `mapstructure:"max-message-items"`
}

// DefaultConfig returns the default EntrySpace configuration.
func DefaultConfig() Config {
	return Config{
		MaxLocalIDs:     1 << 31,
		MaxMessageItems: 1 << 26,
	}
}

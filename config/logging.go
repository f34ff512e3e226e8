package config

import (
	"go.uber.org/zap/zapcore"

	"github.com/meshsim/ghostsync/log"
)

// Logger names.
const (
	GhostLogger     = "ghost"
	TransportLogger = "transport"
	SimLogger       = "sim"
)

// LoggerConfig holds the log encoder and the level of each module. An empty
// module level falls back to Level.
type LoggerConfig struct {
	Encoder        string `mapstructure:"log-encoder"`
	Level          string `mapstructure:"level"`
	GhostLevel     string `mapstructure:"ghost"`
	TransportLevel string `mapstructure:"transport"`
	SimLevel       string `mapstructure:"sim"`
}

// DefaultLoggingConfig returns the default logging configuration.
func DefaultLoggingConfig() LoggerConfig {
	return LoggerConfig{
		Encoder: log.ConsoleEncoder,
		Level:   zapcore.InfoLevel.String(),
	}
}

// ModuleLevel returns the level configured for the named module.
func (c LoggerConfig) ModuleLevel(name string) string {
	var level string
	switch name {
	case GhostLogger:
		level = c.GhostLevel
	case TransportLogger:
		level = c.TransportLevel
	case SimLogger:
		level = c.SimLevel
	}
	if level == "" {
		return c.Level
	}
	return level
}

// Package log builds the zap loggers used across ghostsync components.
package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Encoder names accepted by New.
const (
	ConsoleEncoder = "console"
	JSONEncoder    = "json"
)

// where logs go by default.
var logWriter io.Writer = os.Stdout

// New creates a logger writing to stdout with a fixed level.
func New(level, encoder string) (*zap.Logger, error) {
	return NewWithWriter(logWriter, level, encoder)
}

// NewWithWriter is like New but writes to w.
func NewWithWriter(w io.Writer, level, encoder string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	enc, err := newEncoder(encoder)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return zap.New(core), nil
}

func newEncoder(name string) (zapcore.Encoder, error) {
	switch name {
	case "", ConsoleEncoder:
		return zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), nil
	case JSONEncoder:
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil
	default:
		return nil, fmt.Errorf("unknown log encoder %q", name)
	}
}

// Rank returns a logger annotated with the rank it logs for.
func Rank(logger *zap.Logger, rank int) *zap.Logger {
	return logger.With(zap.Int("rank", rank))
}

package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meshsim/ghostsync/log"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := log.NewWithWriter(&buf, "info", log.JSONEncoder)
		require.NoError(t, err)
		log.Rank(logger, 3).Info("negotiated", zap.Int("ghosts", 2))
		logger.Debug("dropped")
		require.NoError(t, logger.Sync())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "negotiated", entry["msg"])
		require.EqualValues(t, 3, entry["rank"])
		require.EqualValues(t, 2, entry["ghosts"])
	})
	t.Run("bad level", func(t *testing.T) {
		_, err := log.NewWithWriter(&bytes.Buffer{}, "loud", log.ConsoleEncoder)
		require.Error(t, err)
	})
	t.Run("bad encoder", func(t *testing.T) {
		_, err := log.NewWithWriter(&bytes.Buffer{}, "info", "xml")
		require.Error(t, err)
	})
}

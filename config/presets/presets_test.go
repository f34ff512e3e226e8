package presets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	require.Equal(t, []string{"fastnet", "standalone", "testnet"}, Options())
	for _, name := range Options() {
		cfg, err := Get(name)
		require.NoError(t, err)
		require.Equal(t, name, cfg.Preset)
		require.NoError(t, cfg.Sim.Validate(), name)
	}
	_, err := Get("mainnet")
	require.ErrorContains(t, err, "not registered")
}

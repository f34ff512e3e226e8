package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/meshsim/ghostsync/ghost"
	"github.com/meshsim/ghostsync/log/logtest"
	"github.com/meshsim/ghostsync/transport"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Ranks = 4
	cfg.Entries = 50
	cfg.Halo = 5
	cfg.Rounds = 6
	cfg.MoveFraction = 0.1
	cfg.RemoveFraction = 0.05
	return cfg
}

func TestRunLocal(t *testing.T) {
	cfg := testConfig()
	report, err := Run(context.Background(), cfg, WithLogger(logtest.New(t)))
	require.NoError(t, err)
	require.Equal(t, cfg.Rounds, report.Rounds)
	require.NotZero(t, report.Moves)
	require.NotZero(t, report.Removes)
	require.NotZero(t, report.SyncBytes)
	require.NotZero(t, report.Adopted)
	require.Equal(t, cfg.Ranks*cfg.Entries, report.Entries-report.Ghosts, "removed entries are replaced")
}

func TestRunDeterministic(t *testing.T) {
	cfg := testConfig()
	a, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	a.Duration, b.Duration = 0, 0
	require.Equal(t, a, b)
}

func TestRunNoHalo(t *testing.T) {
	cfg := testConfig()
	cfg.Halo = 0
	cfg.MoveFraction = 0
	cfg.RemoveFraction = 0
	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Zero(t, report.Ghosts)
	require.Zero(t, report.SyncBytes)
}

func TestRunSingleRank(t *testing.T) {
	cfg := testConfig()
	cfg.Ranks = 1
	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Zero(t, report.Moves)
	require.Zero(t, report.Ghosts)
}

func TestRunP2P(t *testing.T) {
	cfg := testConfig()
	cfg.Ranks = 3
	cfg.Rounds = 3
	cfg.Transport = TransportP2P
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	report, err := Run(ctx, cfg,
		WithLogger(logtest.New(t)),
		WithEndpointOpts(transport.WithTimeout(20*time.Second)),
	)
	require.NoError(t, err)
	require.Equal(t, 3, report.Rounds)
	require.NotZero(t, report.Ghosts)
}

func TestRunModuleLoggers(t *testing.T) {
	cfg := testConfig()
	cfg.Rounds = 1
	ghostCore, ghostLogs := observer.New(zapcore.DebugLevel)
	runCore, runLogs := observer.New(zapcore.DebugLevel)
	_, err := Run(context.Background(), cfg,
		WithLogger(zap.New(runCore)),
		WithGhostLogger(zap.New(ghostCore)),
		WithTransportLogger(zap.NewNop()),
	)
	require.NoError(t, err)

	committed := ghostLogs.FilterMessage("negotiation committed")
	require.Equal(t, 2*cfg.Ranks, committed.Len(), "populate and one round on every rank")
	ranks := map[int64]bool{}
	for _, entry := range committed.All() {
		ranks[entry.ContextMap()["rank"].(int64)] = true
	}
	require.Len(t, ranks, cfg.Ranks)
	require.Zero(t, runLogs.FilterMessage("negotiation committed").Len())
	require.Equal(t, cfg.Ranks, runLogs.FilterMessage("round done").Len())
}

func TestRunLocalIDLimit(t *testing.T) {
	cfg := testConfig()
	gcfg := ghost.DefaultConfig()
	gcfg.MaxLocalIDs = 10
	_, err := Run(context.Background(), cfg, WithGhostConfig(gcfg))
	require.ErrorIs(t, err, ghost.ErrLocalIDExhausted)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		desc   string
		modify func(*Config)
	}{
		{"ranks", func(c *Config) { c.Ranks = 0 }},
		{"entries", func(c *Config) { c.Entries = 0 }},
		{"halo", func(c *Config) { c.Halo = c.Entries + 1 }},
		{"rounds", func(c *Config) { c.Rounds = -1 }},
		{"move", func(c *Config) { c.MoveFraction = 1.5 }},
		{"remove", func(c *Config) { c.RemoveFraction = -0.1 }},
		{"transport", func(c *Config) { c.Transport = "mpi" }},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			_, err := Run(context.Background(), cfg)
			require.ErrorIs(t, err, ErrConfig)
		})
	}
	require.NoError(t, DefaultConfig().Validate())
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, fs afero.Fs, path string) (Config, error) {
	t.Helper()
	cfg := DefaultConfig()
	vip := viper.New()
	if err := LoadConfig(fs, path, vip); err != nil {
		return cfg, err
	}
	err := Unmarshal(vip, &cfg)
	return cfg, err
}

func TestLoadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/ghostsim.toml", []byte(`
[main]
metrics = true
collective-timeout = "5s"

[ghost]
max-local-ids = 4096

[p2p]
timeout = "2s"

[sim]
ranks = 6
transport = "p2p"
move-fraction = 0.25

[logging]
level = "debug"
transport = "warn"
`), 0o600))

	cfg, err := load(t, fs, "/etc/ghostsim.toml")
	require.NoError(t, err)
	require.True(t, cfg.CollectMetrics)
	require.Equal(t, 5*time.Second, cfg.CollectiveTimeout)
	require.Equal(t, uint32(4096), cfg.Ghost.MaxLocalIDs)
	require.Equal(t, DefaultConfig().Ghost.MaxMessageItems, cfg.Ghost.MaxMessageItems)
	require.Equal(t, 2*time.Second, cfg.P2P.Timeout)
	require.Equal(t, DefaultConfig().P2P.Protocol, cfg.P2P.Protocol)
	require.Equal(t, 6, cfg.Sim.Ranks)
	require.Equal(t, "p2p", cfg.Sim.Transport)
	require.Equal(t, 0.25, cfg.Sim.MoveFraction)
	require.Equal(t, DefaultConfig().Sim.Entries, cfg.Sim.Entries)
	require.Equal(t, "debug", cfg.Logging.ModuleLevel(GhostLogger))
	require.Equal(t, "warn", cfg.Logging.ModuleLevel(TransportLogger))
}

func TestLoadConfigErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := load(t, fs, "/missing.toml")
	require.ErrorContains(t, err, "read config file /missing.toml")

	require.NoError(t, afero.WriteFile(fs, "/unknown.toml", []byte("[sim]\nrank = 3\n"), 0o600))
	_, err = load(t, fs, "/unknown.toml")
	require.ErrorContains(t, err, "rank")

	require.NoError(t, afero.WriteFile(fs, "/bad.toml", []byte("[main]\ncollective-timeout = \"soon\"\n"), 0o600))
	_, err = load(t, fs, "/bad.toml")
	require.ErrorContains(t, err, "unmarshal config")
}

func TestLoadConfigNoFile(t *testing.T) {
	cfg, err := load(t, afero.NewMemMapFs(), "")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestWriteTOMLRoundTrip(t *testing.T) {
	want := DefaultConfig()
	want.Sim.Ranks = 3
	want.Logging.SimLevel = "debug"
	var buf bytes.Buffer
	require.NoError(t, WriteTOML(&buf, want))
	require.Contains(t, buf.String(), "[sim]")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/ghostsim.toml", buf.Bytes(), 0o600))
	got, err := load(t, fs, "/ghostsim.toml")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSaveTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ghostsim.toml")
	want := DefaultConfig()
	want.Sim.Rounds = 3
	require.NoError(t, SaveTOML(path, want))
	want.Sim.Rounds = 4
	require.NoError(t, SaveTOML(path, want))

	got, err := load(t, afero.NewOsFs(), path)
	require.NoError(t, err)
	require.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

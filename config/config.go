// Package config contains ghostsim configuration definitions.
package config

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"github.com/natefinch/atomic"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/meshsim/ghostsync/ghost"
	"github.com/meshsim/ghostsync/sim"
	"github.com/meshsim/ghostsync/transport/lp2p"
)

// Config defines the top level configuration of ghostsim.
type Config struct {
	BaseConfig `mapstructure:"main"`
	Ghost      ghost.Config `mapstructure:"ghost"`
	P2P        lp2p.Config  `mapstructure:"p2p"`
	Sim        sim.Config   `mapstructure:"sim"`
	Logging    LoggerConfig `mapstructure:"logging"`
}

// BaseConfig defines the options not owned by a component.
type BaseConfig struct {
	ConfigFile string `mapstructure:"config"`
	Preset     string `mapstructure:"preset"`

	CollectMetrics bool   `mapstructure:"metrics"`
	MetricsAddr    string `mapstructure:"metrics-addr"`
	// MetricsPush is the url of a prometheus push gateway that receives the
	// metrics once the run completes.
	MetricsPush string `mapstructure:"metrics-push"`

	// CollectiveTimeout bounds every collective call, zero waits forever.
	CollectiveTimeout time.Duration `mapstructure:"collective-timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseConfig: BaseConfig{
			MetricsAddr:       "127.0.0.1:9090",
			CollectiveTimeout: time.Minute,
		},
		Ghost:   ghost.DefaultConfig(),
		P2P:     lp2p.DefaultConfig(),
		Sim:     sim.DefaultConfig(),
		Logging: DefaultLoggingConfig(),
	}
}

// LoadConfig reads the config file at path from fs into vip. An empty path
// leaves vip untouched.
func LoadConfig(fs afero.Fs, path string, vip *viper.Viper) error {
	if path == "" {
		return nil
	}
	vip.SetFs(fs)
	vip.SetConfigFile(path)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// Unmarshal decodes the values loaded into vip over cfg. Keys that do not
// match any option are an error.
func Unmarshal(vip *viper.Viper, cfg *Config) error {
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(hook),
		withErrorUnused(),
	}
	if err := vip.Unmarshal(cfg, opts...); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func withErrorUnused() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	}
}

// WriteTOML writes cfg in the format LoadConfig reads.
func WriteTOML(w io.Writer, cfg Config) error {
	var values map[string]any
	if err := mapstructure.Decode(cfg, &values); err != nil {
		return fmt.Errorf("flatten config: %w", err)
	}
	if err := toml.NewEncoder(w).Encode(values); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// SaveTOML replaces the file at path with cfg. Readers never observe a partly
// written file.
func SaveTOML(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := WriteTOML(&buf, cfg); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write config file %s: %w", path, err)
	}
	return nil
}

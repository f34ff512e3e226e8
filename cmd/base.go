// Package cmd holds the flags and the configuration loading shared by ghostsync executables.
package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/meshsim/ghostsync/config"
	"github.com/meshsim/ghostsync/config/presets"
)

var (
	// Version is the app's semantic version. Designed to be overwritten by make.
	Version string

	// Commit is the git commit used to build the app. Designed to be overwritten by make.
	Commit string
)

// LoadConfig builds the configuration from the defaults or a preset, the config
// file and the flags changed on the command line. Later sources win.
func LoadConfig(fs afero.Fs, flags *pflag.FlagSet) (*config.Config, error) {
	vip := viper.New()
	var err error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = vip.BindPFlag(key, f)
	})
	if err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	if err := config.LoadConfig(fs, vip.GetString("main.config"), vip); err != nil {
		return nil, err
	}

	conf := config.DefaultConfig()
	if name := vip.GetString("main.preset"); len(name) > 0 {
		preset, err := presets.Get(name)
		if err != nil {
			return nil, err
		}
		conf = preset
	}
	if err := config.Unmarshal(vip, &conf); err != nil {
		return nil, err
	}
	if err := conf.Sim.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

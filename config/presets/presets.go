// Package presets holds named configurations that replace the defaults.
package presets

import (
	"fmt"
	"maps"
	"slices"

	"github.com/meshsim/ghostsync/config"
)

var presets = map[string]config.Config{}

func register(name string, cfg config.Config) {
	if _, exist := presets[name]; exist {
		panic(fmt.Sprintf("preset with name %s already exists", name))
	}
	cfg.Preset = name
	presets[name] = cfg
}

// Options returns the registered preset names.
func Options() []string {
	return slices.Sorted(maps.Keys(presets))
}

// Get returns the preset with name.
func Get(name string) (config.Config, error) {
	cfg, exist := presets[name]
	if !exist {
		return config.Config{}, fmt.Errorf("preset %s is not registered, options %v", name, Options())
	}
	return cfg, nil
}

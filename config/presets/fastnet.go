package presets

import (
	"time"

	"github.com/meshsim/ghostsync/config"
)

func init() {
	register("fastnet", fastnet())
}

// fastnet is a small, high churn run over the in process transport.
func fastnet() config.Config {
	conf := config.DefaultConfig()
	conf.CollectiveTimeout = 10 * time.Second
	conf.Sim.Ranks = 4
	conf.Sim.Entries = 100
	conf.Sim.Halo = 8
	conf.Sim.Rounds = 20
	conf.Sim.MoveFraction = 0.1
	conf.Sim.RemoveFraction = 0.05
	return conf
}

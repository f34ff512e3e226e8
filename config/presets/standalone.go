package presets

import (
	"github.com/meshsim/ghostsync/config"
)

func init() {
	register("standalone", standalone())
}

// standalone runs a single rank, all entries are owned locally.
func standalone() config.Config {
	conf := config.DefaultConfig()
	conf.Sim.Ranks = 1
	conf.Sim.Halo = 0
	conf.Sim.MoveFraction = 0
	return conf
}

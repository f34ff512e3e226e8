package presets

import (
	"time"

	"github.com/meshsim/ghostsync/config"
	"github.com/meshsim/ghostsync/sim"
)

func init() {
	register("testnet", testnet())
}

// testnet runs the collectives over libp2p streams.
func testnet() config.Config {
	conf := config.DefaultConfig()
	conf.Sim.Transport = sim.TransportP2P
	conf.Sim.Ranks = 8
	conf.Sim.Entries = 2000
	conf.Sim.Halo = 32
	conf.P2P.Timeout = 10 * time.Second
	conf.Logging.TransportLevel = "warn"
	return conf
}

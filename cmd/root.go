package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshsim/ghostsync/config"
	"github.com/meshsim/ghostsync/config/presets"
)

// flagKeys maps command line flags to the config keys they override.
var flagKeys = map[string]string{
	"config":             "main.config",
	"preset":             "main.preset",
	"metrics":            "main.metrics",
	"metrics-addr":       "main.metrics-addr",
	"metrics-push":       "main.metrics-push",
	"collective-timeout": "main.collective-timeout",

	"max-local-ids":     "ghost.max-local-ids",
	"max-message-items": "ghost.max-message-items",

	"p2p-timeout": "p2p.timeout",

	"ranks":           "sim.ranks",
	"entries":         "sim.entries",
	"halo":            "sim.halo",
	"rounds":          "sim.rounds",
	"move-fraction":   "sim.move-fraction",
	"remove-fraction": "sim.remove-fraction",
	"seed":            "sim.seed",
	"transport":       "sim.transport",

	"log-level":   "logging.level",
	"log-encoder": "logging.log-encoder",
}

// AddCommands adds the ghostsim flags to cmd. Defaults shown in the help are
// the built in ones, a preset or config file replaces them.
func AddCommands(cmd *cobra.Command) {
	def := config.DefaultConfig()
	flags := cmd.PersistentFlags()

	/** ======================== BaseConfig Flags ========================== **/
	flags.StringP("config", "c", "", "load configuration from file")
	flags.StringP("preset", "p", "",
		fmt.Sprintf("preset overwrites default values of the config. options %+s", presets.Options()))
	flags.Bool("metrics", def.CollectMetrics, "serve prometheus metrics")
	flags.String("metrics-addr", def.MetricsAddr, "address of the metrics server")
	flags.String("metrics-push", def.MetricsPush, "push metrics to this gateway url when the run ends")
	flags.Duration("collective-timeout", def.CollectiveTimeout,
		"how long a collective waits for the other ranks, zero waits forever")

	/** ======================== Ghost Flags ========================== **/
	flags.Uint32("max-local-ids", def.Ghost.MaxLocalIDs, "local id limit of every entry space")
	flags.Uint32("max-message-items", def.Ghost.MaxMessageItems, "item limit of a single negotiation message")

	/** ======================== P2P Flags ========================== **/
	flags.Duration("p2p-timeout", def.P2P.Timeout, "deadline of a single libp2p message")

	/** ======================== Sim Flags ========================== **/
	flags.Int("ranks", def.Sim.Ranks, "number of ranks")
	flags.Int("entries", def.Sim.Entries, "entries initially owned by each rank")
	flags.Int("halo", def.Sim.Halo, "ghost entries on each side of a rank")
	flags.Int("rounds", def.Sim.Rounds, "number of mutation rounds")
	flags.Float64("move-fraction", def.Sim.MoveFraction, "fraction of owned entries moved every round")
	flags.Float64("remove-fraction", def.Sim.RemoveFraction, "fraction of owned entries removed every round")
	flags.Uint64("seed", def.Sim.Seed, "random seed")
	flags.String("transport", def.Sim.Transport, "transport between ranks (local, p2p)")

	/** ======================== Logging Flags ========================== **/
	flags.String("log-level", def.Logging.Level, "default level of every logger")
	flags.String("log-encoder", def.Logging.Encoder, "log encoder (console, json)")
}

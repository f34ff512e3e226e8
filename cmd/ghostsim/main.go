// ghostsim runs ghost entry spaces of several ranks through rounds of moves,
// removals, negotiation and synchronization, and verifies the result.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meshsim/ghostsync/cmd"
	"github.com/meshsim/ghostsync/config"
	"github.com/meshsim/ghostsync/log"
	"github.com/meshsim/ghostsync/metrics"
	"github.com/meshsim/ghostsync/sim"
	"github.com/meshsim/ghostsync/transport"
)

var (
	version string
	commit  string
)

var rootCmd = &cobra.Command{
	Use:          "ghostsim",
	Short:        "Simulate ghost entry negotiation and synchronization",
	SilenceUsage: true,
	RunE: func(c *cobra.Command, _ []string) error {
		conf, err := cmd.LoadConfig(afero.NewOsFs(), c.Flags())
		if err != nil {
			return err
		}
		return run(c.Context(), conf)
	},
}

var configOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as toml",
	RunE: func(c *cobra.Command, _ []string) error {
		conf, err := cmd.LoadConfig(afero.NewOsFs(), c.Flags())
		if err != nil {
			return err
		}
		if configOutput != "" {
			return config.SaveTOML(configOutput, *conf)
		}
		return config.WriteTOML(c.OutOrStdout(), *conf)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	Run: func(c *cobra.Command, _ []string) {
		fmt.Fprint(c.OutOrStdout(), cmd.Version)
		if cmd.Commit != "" {
			fmt.Fprintf(c.OutOrStdout(), "+%s", cmd.Commit)
		}
		fmt.Fprintln(c.OutOrStdout())
	},
}

func init() {
	cmd.AddCommands(rootCmd)
	configCmd.Flags().StringVarP(&configOutput, "output", "o", "", "write the configuration to this file")
	rootCmd.AddCommand(configCmd, versionCmd)
}

func moduleLogger(conf config.LoggerConfig, name string) (*zap.Logger, error) {
	logger, err := log.New(conf.ModuleLevel(name), conf.Encoder)
	if err != nil {
		return nil, fmt.Errorf("%s logger: %w", name, err)
	}
	return logger.Named(name), nil
}

func run(ctx context.Context, conf *config.Config) error {
	logger, err := moduleLogger(conf.Logging, config.SimLogger)
	if err != nil {
		return err
	}
	defer logger.Sync()
	ghostLogger, err := moduleLogger(conf.Logging, config.GhostLogger)
	if err != nil {
		return err
	}
	transportLogger, err := moduleLogger(conf.Logging, config.TransportLogger)
	if err != nil {
		return err
	}

	if conf.CollectMetrics {
		addr, err := metrics.StartCollectingMetrics(ctx, conf.MetricsAddr, logger)
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		logger.Info("serving metrics", zap.Stringer("addr", addr))
	}

	runID := uuid.NewString()
	logger = logger.With(zap.String("run", runID))
	logger.Info("starting simulation",
		zap.String("preset", conf.Preset),
		zap.Int("ranks", conf.Sim.Ranks),
		zap.String("transport", conf.Sim.Transport),
		zap.Uint64("seed", conf.Sim.Seed),
	)
	report, err := sim.Run(ctx, conf.Sim,
		sim.WithLogger(logger),
		sim.WithGhostLogger(ghostLogger),
		sim.WithTransportLogger(transportLogger),
		sim.WithGhostConfig(conf.Ghost),
		sim.WithP2PConfig(conf.P2P),
		sim.WithEndpointOpts(transport.WithTimeout(conf.CollectiveTimeout)),
	)
	if conf.MetricsPush != "" {
		grouping := map[string]string{"run": runID, "transport": conf.Sim.Transport}
		if err := metrics.PushMetrics(ctx, conf.MetricsPush, "ghostsim", grouping); err != nil {
			logger.Warn("failed to push metrics", zap.Error(err))
		}
	}
	if err != nil {
		return fmt.Errorf("run simulation: %w", err)
	}
	logger.Info("simulation done", zap.Object("report", report))
	return nil
}

func main() {
	cmd.Version = version
	cmd.Commit = commit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Package main is the entry point for the stETH withdrawal queue monitor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type runOptions struct {
	configPath string
	cliMode    bool
	ticks      uint64
}

func newRootCmd(ctx context.Context) *cobra.Command {
	opts := &runOptions{}

	runE := func(cmd *cobra.Command, _ []string) error {
		return run(ctx, *opts)
	}

	rootCmd := &cobra.Command{
		Use:   "steth-arb",
		Short: "stETH withdrawal queue arbitrage monitor",
		Long: `steth-arb polls the Curve stETH/ETH pool, the Aave wstETH reserve and the
Lido withdrawal queue, and reports whether buying discounted stETH and
redeeming it through the queue beats lending over the same period.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runE,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&opts.cliMode, "cli", false, "Print plain reports instead of the dashboard")
	rootCmd.PersistentFlags().Uint64Var(&opts.ticks, "ticks", 0, "Stop after this many ticks (0 runs until interrupted)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start the polling loop (default)",
		RunE:  runE,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "steth-arb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	})

	return rootCmd
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := newRootCmd(ctx).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

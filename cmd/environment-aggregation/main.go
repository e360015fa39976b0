package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

// Create the root command
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "environment-aggregation",
		Short: "Air quality, weather and health guidance for French cities",
		Long: "environment-aggregation runs the air quality, weather and health advisory providers " +
			"and the aggregator that combines them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("log", "l", "", "Set log level, overrides LOG_LEVEL. Available: debug, info, warn, error")
	cmd.PersistentFlags().String("env-file", "", ".env file to load (default .env)")
	cmd.PersistentFlags().IntP("port", "p", 0, "Listen port, overrides the configured one")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAirQualityCmd())
	cmd.AddCommand(newWeatherCmd())
	cmd.AddCommand(newAdvisoryCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Create the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("environment-aggregation %s (%s) %s\n", version, commit, buildDate)
		},
	}
}

func main() {
	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

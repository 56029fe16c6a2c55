package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the session registry behind a JSON API over HTTP.
Machines found in --machines are registered at startup. With --redis-url,
definitions, instances and locks are shared between replicas.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("listen") {
			cfg.Listen, _ = flags.GetString("listen")
		}
		if flags.Changed("machines") {
			cfg.MachinesDir, _ = flags.GetString("machines")
		}
		if flags.Changed("redis-url") {
			cfg.Redis.URL, _ = flags.GetString("redis-url")
		}
		if flags.Changed("metrics") {
			cfg.Metrics, _ = flags.GetBool("metrics")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.Serve(ctx, cfg, logger, nil)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "Address to listen on")
	serveCmd.Flags().String("machines", "", "Directory of machine files to register at startup")
	serveCmd.Flags().String("redis-url", "", "Redis URL for shared stores (redis://host:port/db)")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
}

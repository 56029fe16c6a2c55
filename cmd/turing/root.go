package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg         config.Config
	logger      = logging.NewNop()
	closeLogger = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "turing",
	Short: "Turing is a deterministic Turing machine interpreter",
	Long: `Turing validates machine definitions, runs them on a sparse tape and
serves concurrent sessions over HTTP and the Model Context Protocol.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = closeLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")
}

// setup loads the configuration file, applies flag overrides and opens the logger.
func setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	loaded, err := config.Load(path, flags.Changed("config"))
	if err != nil {
		return err
	}

	if flags.Changed("log-level") {
		loaded.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		loaded.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("log-file") {
		loaded.Log.File, _ = flags.GetString("log-file")
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(loaded.Log.Level)
	if err != nil {
		return err
	}
	l, closer, err := logging.Open(logging.Options{
		Level:  level,
		Format: loaded.Log.Format,
		File:   loaded.Log.File,
	})
	if err != nil {
		return err
	}

	cfg, logger, closeLogger = loaded, l, closer
	slog.SetDefault(logger)
	return nil
}

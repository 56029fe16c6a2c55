package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run a machine file on an input tape",
	Long: `Loads a machine from FILE (.tm, .yaml, .json or .md), writes the input on
the tape and runs until the machine halts or --max-steps transitions apply.

Use --interactive to step through the run by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		tape, _ := flags.GetString("tape")
		symbols, _ := flags.GetString("symbols")
		maxSteps, _ := flags.GetInt("max-steps")
		trace, _ := flags.GetBool("trace")
		asJSON, _ := flags.GetBool("json")
		interactive, _ := flags.GetBool("interactive")

		opts := cli.RunOptions{
			Path:        args[0],
			Tape:        tape,
			MaxSteps:    maxSteps,
			Trace:       trace,
			JSON:        asJSON,
			Interactive: interactive,
			Input:       os.Stdin,
			Output:      cmd.OutOrStdout(),
			Profile:     tui.Profile(os.Stdout),
			Logger:      logger,
		}
		if flags.Changed("symbols") {
			opts.Symbols = splitSymbols(symbols)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return cli.Run(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("tape", "t", "", "Input written on the tape, one symbol per character")
	runCmd.Flags().String("symbols", "", "Comma separated input symbols, for multi-character alphabets")
	runCmd.Flags().IntP("max-steps", "n", 10_000, "Stop after this many transitions")
	runCmd.Flags().Bool("trace", false, "Print every applied transition")
	runCmd.Flags().Bool("json", false, "Print the result as JSON")
	runCmd.Flags().BoolP("interactive", "i", false, "Step through the run interactively")
}

func splitSymbols(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

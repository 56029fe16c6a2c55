package main

import (
	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe FILE",
	Short: "Print a machine's alphabets and transition table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var render func(string) (string, error)
		if raw, _ := cmd.Flags().GetBool("raw"); !raw {
			r, err := tui.NewRenderer(0)
			if err != nil {
				return err
			}
			render = r
		}
		return cli.Describe(cmd.Context(), args[0], cmd.OutOrStdout(), render)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print Markdown without terminal styling")
}

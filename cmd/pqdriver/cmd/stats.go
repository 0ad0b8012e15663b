package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flier/gopq/pkg/trace"
)

// statsCmd prints per-opcode operation counts for a trace.
var statsCmd = &cobra.Command{
	Use:   "stats <trace-file>",
	Short: "Print per-opcode operation counts for a trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := loadTrace(args[0])
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), trace.Collect(tr.Ops))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

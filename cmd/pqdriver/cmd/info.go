package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// infoCmd prints a trace's header fields.
var infoCmd = &cobra.Command{
	Use:   "info <trace-file>",
	Short: "Print a trace's header",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := loadTrace(args[0])
		if err != nil {
			return err
		}

		h := tr.Header
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ops: %d\n", h.OpCount)
		fmt.Fprintf(out, "queue ids: %d\n", h.PQIDs)
		fmt.Fprintf(out, "node ids: %d\n", h.NodeIDs)
		fmt.Fprintf(out, "max live nodes: %d\n", h.MaxLiveNodes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flier/gopq/pkg/replay"
)

// runCmd replays a trace and prints the average iteration time in whole
// microseconds, the single figure downstream tooling consumes.
var runCmd = &cobra.Command{
	Use:   "run <trace-file>",
	Short: "Replay a trace against one queue variant and time it",
	Long: `Run replays the recorded operations against the selected queue variant,
repeating the whole trace until the measurement window is filled, and
prints the average microseconds one pass takes.

Available variants:
  ` + strings.Join(replay.Variants(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(runCmd)

	rootCmd.PersistentFlags().StringP("queue", "q", "pairing", "queue variant to measure")
	rootCmd.PersistentFlags().Duration("min-time", replay.DefaultMinTime, "minimum accumulated measurement time")

	_ = config.BindPFlag("queue", rootCmd.PersistentFlags().Lookup("queue"))
	_ = config.BindPFlag("min-time", rootCmd.PersistentFlags().Lookup("min-time"))
}

func runReplay(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return cmd.Help()
	}

	tr, err := loadTrace(args[0])
	if err != nil {
		return err
	}

	engine := replay.Engine{MinTime: config.GetDuration("min-time")}

	result, err := engine.Run(tr, config.GetString("queue"))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", result.AvgMicros())
	return nil
}

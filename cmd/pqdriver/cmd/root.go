// Package cmd implements the pqdriver command line.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flier/gopq/pkg/trace"
	"github.com/flier/gopq/pkg/xerrors"
)

// config resolves settings with precedence flag > PQDRIVER_* env var >
// default.
var config = viper.New()

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "pqdriver",
	Short: "Replay recorded priority-queue traces and measure them",
	Long: `pqdriver drives recorded operation traces against a chosen priority-queue
implementation and reports how long a pass over the trace takes, so the
heap variants can be compared on identical workloads.

Invoking pqdriver with just a trace file is shorthand for "pqdriver run".`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runReplay,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and maps failures to a non-zero exit.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if fe, ok := xerrors.AsA[*trace.FormatError](err); ok {
			fmt.Fprintf(os.Stderr, "pqdriver: %v\n", fe)
		} else {
			fmt.Fprintf(os.Stderr, "pqdriver: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	config.SetEnvPrefix("PQDRIVER")
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()
}

// loadTrace reads and validates a trace file argument.
func loadTrace(path string) (*trace.Trace, error) {
	tr, err := trace.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return tr, nil
}

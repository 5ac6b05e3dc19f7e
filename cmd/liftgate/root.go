// liftgate runs deterministic A/B experiments: hash-based variant
// assignment, power analysis, two-proportion significance testing, and a
// guardrail-aware ship/hold decision.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"liftgate/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "liftgate",
	Short: "Deterministic A/B experiment pipeline with guardrail-aware ship decisions",
	Long: "Liftgate assigns users to variants by hashing, sizes experiments with a\n" +
		"two-proportion power analysis, tests conversion lift for significance, and\n" +
		"recommends ship/hold/no-ship with guardrail metrics taken into account.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

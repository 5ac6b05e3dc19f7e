package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liftgate/internal/assign"
)

var assignFlags struct {
	user       string
	experiment string
	config     string
	file       string
}

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a user to a variant (deterministic, stateless)",
	Long: `Assign hashes the (user, experiment) pair and maps it onto the experiment's
variant partition. The same pair always lands in the same variant, on any
machine, with no stored state.`,
	RunE: runAssign,
}

func init() {
	f := assignCmd.Flags()
	f.StringVar(&assignFlags.user, "user", "", "User identifier (required)")
	f.StringVar(&assignFlags.experiment, "experiment", "", "Experiment identifier (overrides the definition's id)")
	f.StringVar(&assignFlags.config, "config", "ads-conversion", "Embedded experiment definition name")
	f.StringVar(&assignFlags.file, "file", "", "Experiment definition YAML file (overrides --config)")

	_ = assignCmd.MarkFlagRequired("user")
}

func runAssign(cmd *cobra.Command, _ []string) error {
	def, err := loadDefinition(assignFlags.config, assignFlags.file)
	if err != nil {
		return err
	}

	experimentID := def.ExperimentID
	if assignFlags.experiment != "" {
		experimentID = assignFlags.experiment
	}

	variant, err := assign.Assign(assignFlags.user, experimentID, def.Variants)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "user:       %s\n", assignFlags.user)
	fmt.Fprintf(out, "experiment: %s\n", experimentID)
	fmt.Fprintf(out, "bucket:     %.6f\n", assign.Bucket(assignFlags.user, experimentID))
	fmt.Fprintf(out, "variant:    %s\n", variant)
	return nil
}

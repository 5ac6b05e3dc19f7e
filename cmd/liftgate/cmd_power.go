package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liftgate/internal/power"
)

var powerFlags struct {
	config string
	file   string
}

var powerCmd = &cobra.Command{
	Use:   "power",
	Short: "Compute the required per-variant sample size for an experiment",
	RunE:  runPower,
}

func init() {
	f := powerCmd.Flags()
	f.StringVar(&powerFlags.config, "config", "ads-conversion", "Embedded experiment definition name")
	f.StringVar(&powerFlags.file, "file", "", "Experiment definition YAML file (overrides --config)")
}

func runPower(cmd *cobra.Command, _ []string) error {
	def, err := loadDefinition(powerFlags.config, powerFlags.file)
	if err != nil {
		return err
	}

	n, err := power.RequiredSampleSize(def.BaselineRate, def.MDE, def.Alpha, def.Power)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "experiment:    %s\n", def.ExperimentID)
	fmt.Fprintf(out, "baseline rate: %.4f\n", def.BaselineRate)
	fmt.Fprintf(out, "relative MDE:  %.4f (target rate %.4f)\n", def.MDE, def.BaselineRate*(1+def.MDE))
	fmt.Fprintf(out, "alpha:         %.3f  power: %.2f\n", def.Alpha, def.Power)
	fmt.Fprintf(out, "required:      %d users per variant (%d total at a 50/50 split)\n", n, 2*n)
	return nil
}

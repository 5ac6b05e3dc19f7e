package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liftgate/internal/format"
	"liftgate/internal/pipeline"
	"liftgate/internal/report"
	"liftgate/internal/simulate"
	"liftgate/internal/store"
)

var runFlags struct {
	config         string
	file           string
	users          int
	seed           uint64
	trueLift       float64
	guardrailLifts []string
	outputFormat   string
	dbPath         string
	noStore        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline on simulated traffic and record the outcome",
	Long: `Run generates synthetic users, buckets them with the production assignment
hash, draws conversion and guardrail outcomes from configured true rates,
evaluates significance, and prints the ship/hold recommendation. The run and
all inference results are persisted to the history store.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.config, "config", "ads-conversion", "Embedded experiment definition name")
	f.StringVar(&runFlags.file, "file", "", "Experiment definition YAML file (overrides --config)")
	f.IntVar(&runFlags.users, "users", 10000, "Number of users to simulate")
	f.Uint64Var(&runFlags.seed, "seed", 1, "RNG seed for outcome draws (assignment is seed-independent)")
	f.Float64Var(&runFlags.trueLift, "true-lift", 0.10, "Simulated relative lift on the primary metric")
	f.StringArrayVar(&runFlags.guardrailLifts, "guardrail-lift", nil, "Simulated guardrail lift as name=value (repeatable)")
	f.StringVar(&runFlags.outputFormat, "format", "ascii", "Report format (ascii, markdown)")
	f.StringVar(&runFlags.dbPath, "db", store.DefaultDBPath, "History store path")
	f.BoolVar(&runFlags.noStore, "no-store", false, "Skip persisting the run")
}

func runRun(cmd *cobra.Command, _ []string) error {
	def, err := loadDefinition(runFlags.config, runFlags.file)
	if err != nil {
		return err
	}

	guardrailLifts, err := parseGuardrailLifts(runFlags.guardrailLifts)
	if err != nil {
		return err
	}

	ds, err := simulate.Generate(def, simulate.Params{
		Users:          runFlags.users,
		Seed:           runFlags.seed,
		TrueLift:       runFlags.trueLift,
		GuardrailLifts: guardrailLifts,
	})
	if err != nil {
		return fmt.Errorf("generate traffic: %w", err)
	}

	rep, err := pipeline.Run(cmd.Context(), def, pipeline.FromDataset(ds))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, report.Render(rep, format.ParseMode(runFlags.outputFormat)))

	if runFlags.noStore {
		return nil
	}
	st, err := store.Open(runFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer st.Close()

	runID, err := report.Persist(st, rep, def.Name, runFlags.seed)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nRecorded as run #%d in %s\n", runID, runFlags.dbPath)
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liftgate/internal/format"
	"liftgate/internal/pipeline"
	"liftgate/internal/report"
	"liftgate/internal/store"
)

var analyzeFlags struct {
	config     string
	file       string
	control    string
	treatment  string
	guardrails []string
	records    string

	outputFormat string
	dbPath       string
	noStore      bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Evaluate significance and decide from observed data",
	Long: `Analyze accepts either pre-aggregated counts or a CSV of raw outcome
records and runs the inference and decision stages on them.

Counts mode:

  liftgate analyze --control 10000:1200 --treatment 10000:1494 \
      --guardrail latency=9800:8700:9700:8300

Records mode (CSV columns: metric,user_id,variant,converted; metric
"conversion" is the primary):

  liftgate analyze --records outcomes.csv`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.config, "config", "ads-conversion", "Embedded experiment definition name")
	f.StringVar(&analyzeFlags.file, "file", "", "Experiment definition YAML file (overrides --config)")
	f.StringVar(&analyzeFlags.control, "control", "", "Control counts as trials:successes")
	f.StringVar(&analyzeFlags.treatment, "treatment", "", "Treatment counts as trials:successes")
	f.StringArrayVar(&analyzeFlags.guardrails, "guardrail", nil,
		"Guardrail counts as name=ctrlTrials:ctrlSuccesses:treatTrials:treatSuccesses (repeatable)")
	f.StringVar(&analyzeFlags.records, "records", "", "CSV file of raw outcome records (overrides count flags)")
	f.StringVar(&analyzeFlags.outputFormat, "format", "ascii", "Report format (ascii, markdown)")
	f.StringVar(&analyzeFlags.dbPath, "db", store.DefaultDBPath, "History store path")
	f.BoolVar(&analyzeFlags.noStore, "no-store", true, "Skip persisting the run")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	def, err := loadDefinition(analyzeFlags.config, analyzeFlags.file)
	if err != nil {
		return err
	}

	var in pipeline.Input
	switch {
	case analyzeFlags.records != "":
		in, err = readRecordsCSV(analyzeFlags.records)
		if err != nil {
			return err
		}
	case analyzeFlags.control != "" && analyzeFlags.treatment != "":
		in, err = inputFromCountFlags(def, analyzeFlags.control, analyzeFlags.treatment, analyzeFlags.guardrails)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("provide either --records or both --control and --treatment")
	}

	rep, err := pipeline.Run(cmd.Context(), def, in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, report.Render(rep, format.ParseMode(analyzeFlags.outputFormat)))

	if analyzeFlags.noStore {
		return nil
	}
	st, err := store.Open(analyzeFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer st.Close()

	runID, err := report.Persist(st, rep, def.Name, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nRecorded as run #%d in %s\n", runID, analyzeFlags.dbPath)
	return nil
}

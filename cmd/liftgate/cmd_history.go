package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liftgate/internal/display"
	"liftgate/internal/format"
	"liftgate/internal/report"
	"liftgate/internal/store"
)

var historyFlags struct {
	dbPath       string
	limit        int
	runID        int64
	outputFormat string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded experiment runs",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.dbPath, "db", store.DefaultDBPath, "History store path")
	f.IntVar(&historyFlags.limit, "limit", 20, "Maximum runs to list (0 = all)")
	f.Int64Var(&historyFlags.runID, "run", 0, "Show the stored results of one run")
	f.StringVar(&historyFlags.outputFormat, "format", "ascii", "Output format (ascii, markdown)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(historyFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	mode := format.ParseMode(historyFlags.outputFormat)

	if historyFlags.runID != 0 {
		return showRun(cmd, st, historyFlags.runID, mode)
	}

	runs, err := st.ListRuns(historyFlags.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "No recorded runs in %s\n", historyFlags.dbPath)
		return nil
	}
	fmt.Fprintln(out, report.RenderHistory(runs, mode))
	return nil
}

func showRun(cmd *cobra.Command, st store.Store, runID int64, mode format.Mode) error {
	out := cmd.OutOrStdout()

	run, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run #%d not found", runID)
	}

	results, err := st.ListResultsByRun(runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run:        #%d (%s)\n", run.ID, run.CreatedAt)
	fmt.Fprintf(out, "Experiment: %s (definition %q, seed %d)\n", run.ExperimentID, run.Definition, run.Seed)
	fmt.Fprintf(out, "Verdict:    %s: %s\n\n", display.VerdictWithCode(run.Verdict), run.Justification)

	tb := format.NewTable(mode)
	tb.Header("Metric", "Role", "Control", "Treatment", "Lift", "P-Value", "Significant")
	for _, r := range results {
		tb.Row(r.Metric, display.MetricRole(r.Primary),
			fmt.Sprintf("%d/%d", r.ControlSuccesses, r.ControlTrials),
			fmt.Sprintf("%d/%d", r.TreatmentSuccesses, r.TreatmentTrials),
			format.FmtLift(r.RelativeLift, r.LiftDefined),
			format.FmtPValue(r.PValue),
			format.BoolMark(r.Significant))
	}
	fmt.Fprintln(out, tb.String())
	return nil
}

// Package report renders pipeline output for the console and records it in
// the run-history store. It consumes the pipeline's Report as-is and never
// recomputes a statistic.
package report

import (
	"fmt"
	"strings"

	"liftgate/internal/decision"
	"liftgate/internal/display"
	"liftgate/internal/experiment"
	"liftgate/internal/format"
	"liftgate/internal/pipeline"
	"liftgate/internal/store"
)

// Render returns the full experiment report in the given table mode.
func Render(rep *pipeline.Report, mode format.Mode) string {
	var b strings.Builder

	def := rep.Definition

	counts := format.NewTable(mode)
	counts.Title("Variant Counts: " + def.ExperimentID)
	counts.Header("Variant", "Role", "Trials", "Conversions", "Rate")
	counts.Row(def.ControlLabel(), "control",
		format.FmtCount(rep.ControlAggregate.Trials), format.FmtCount(rep.ControlAggregate.Successes),
		format.FmtRate(rep.Primary.RateControl))
	counts.Row(def.TreatmentLabel(), "treatment",
		format.FmtCount(rep.TreatmentAggregate.Trials), format.FmtCount(rep.TreatmentAggregate.Successes),
		format.FmtRate(rep.Primary.RateTreatment))
	counts.Columns(
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
	)
	b.WriteString(counts.String())
	b.WriteString("\n\n")

	results := format.NewTable(mode)
	results.Title("Inference Results")
	results.Header("Metric", "Role", "Lift", "P-Value", fmt.Sprintf("%.0f%% CI (diff)", (1-def.Alpha)*100), "Significant")
	results.Row(experiment.PrimaryMetric, display.MetricRole(true),
		format.FmtLift(rep.Primary.RelativeLift, rep.Primary.LiftDefined),
		format.FmtPValue(rep.Primary.PValue),
		fmt.Sprintf("[%+.4f, %+.4f]", rep.Primary.CILow, rep.Primary.CIHigh),
		format.BoolMark(rep.Primary.Significant))
	for _, g := range rep.Guardrails {
		results.Row(g.Name, display.MetricRole(false),
			format.FmtLift(g.Result.RelativeLift, g.Result.LiftDefined),
			format.FmtPValue(g.Result.PValue),
			fmt.Sprintf("[%+.4f, %+.4f]", g.Result.CILow, g.Result.CIHigh),
			format.BoolMark(g.Result.Significant))
	}
	b.WriteString(results.String())
	b.WriteString("\n\n")

	code := string(rep.Decision.Verdict)
	fmt.Fprintf(&b, "%s %s: %s\n", display.VerdictGlyph(code), display.Verdict(code), rep.Decision.Justification)
	fmt.Fprintf(&b, "Recommended sample size: %d per variant (observed: %d control, %d treatment)\n",
		rep.RecommendedSampleSize, rep.ControlAggregate.Trials, rep.TreatmentAggregate.Trials)

	return b.String()
}

// Persist records the run and every metric result in the store.
func Persist(st store.Store, rep *pipeline.Report, definitionName string, seed uint64) (int64, error) {
	runID, err := st.SaveRun(&store.Run{
		ExperimentID:  rep.Definition.ExperimentID,
		Definition:    definitionName,
		Seed:          seed,
		Verdict:       string(rep.Decision.Verdict),
		Justification: rep.Decision.Justification,
	})
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}

	primary := &store.MetricResult{
		RunID:   runID,
		Metric:  experiment.PrimaryMetric,
		Primary: true,

		ControlTrials:      rep.ControlAggregate.Trials,
		ControlSuccesses:   rep.ControlAggregate.Successes,
		TreatmentTrials:    rep.TreatmentAggregate.Trials,
		TreatmentSuccesses: rep.TreatmentAggregate.Successes,

		RateControl:   rep.Primary.RateControl,
		RateTreatment: rep.Primary.RateTreatment,
		RelativeLift:  rep.Primary.RelativeLift,
		LiftDefined:   rep.Primary.LiftDefined,
		PValue:        rep.Primary.PValue,
		CILow:         rep.Primary.CILow,
		CIHigh:        rep.Primary.CIHigh,
		Significant:   rep.Primary.Significant,
	}
	if _, err := st.SaveResult(primary); err != nil {
		return 0, fmt.Errorf("save primary result: %w", err)
	}

	for _, g := range rep.Guardrails {
		if err := persistGuardrail(st, runID, g, rep.GuardrailAggregates[g.Name]); err != nil {
			return 0, err
		}
	}
	return runID, nil
}

func persistGuardrail(st store.Store, runID int64, g decision.GuardrailResult, aggs pipeline.ArmAggregates) error {
	row := &store.MetricResult{
		RunID:  runID,
		Metric: g.Name,

		ControlTrials:      aggs.Control.Trials,
		ControlSuccesses:   aggs.Control.Successes,
		TreatmentTrials:    aggs.Treatment.Trials,
		TreatmentSuccesses: aggs.Treatment.Successes,

		RateControl:   g.Result.RateControl,
		RateTreatment: g.Result.RateTreatment,
		RelativeLift:  g.Result.RelativeLift,
		LiftDefined:   g.Result.LiftDefined,
		PValue:        g.Result.PValue,
		CILow:         g.Result.CILow,
		CIHigh:        g.Result.CIHigh,
		Significant:   g.Result.Significant,

		HarmThreshold: g.HarmThreshold,
	}
	if _, err := st.SaveResult(row); err != nil {
		return fmt.Errorf("save guardrail %q result: %w", g.Name, err)
	}
	return nil
}

// RenderHistory renders past runs as a table.
func RenderHistory(runs []*store.Run, mode format.Mode) string {
	tb := format.NewTable(mode)
	tb.Title("Run History")
	tb.Header("ID", "Experiment", "Definition", "Seed", "Verdict", "When")
	for _, r := range runs {
		tb.Row(r.ID, r.ExperimentID, r.Definition, r.Seed, display.Verdict(r.Verdict), r.CreatedAt)
	}
	return tb.String()
}

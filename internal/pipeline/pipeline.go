// Package pipeline composes aggregation, inference, and the decision
// engine into a single experiment evaluation pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"liftgate/internal/decision"
	"liftgate/internal/experiment"
	"liftgate/internal/inference"
	"liftgate/internal/logging"
	"liftgate/internal/power"
	"liftgate/internal/simulate"
)

// ErrMissingVariant reports that an analysis arm has no observations.
var ErrMissingVariant = errors.New("missing variant data")

// Input is the pipeline's data boundary: per-variant aggregates for the
// primary metric and for each guardrail. Callers hand over either
// pre-aggregated counts directly or raw records via FromDataset.
type Input struct {
	Primary    map[string]inference.Aggregate
	Guardrails map[string]map[string]inference.Aggregate
}

// FromDataset aggregates raw outcome records into pipeline input.
func FromDataset(ds *simulate.Dataset) Input {
	in := Input{
		Primary:    simulate.AggregateOutcomes(ds.Primary),
		Guardrails: make(map[string]map[string]inference.Aggregate, len(ds.Guardrails)),
	}
	for name, records := range ds.Guardrails {
		in.Guardrails[name] = simulate.AggregateOutcomes(records)
	}
	return in
}

// ArmAggregates pairs the control and treatment counts for one metric.
type ArmAggregates struct {
	Control   inference.Aggregate
	Treatment inference.Aggregate
}

// Report carries everything downstream rendering needs: the decision plus
// every inference result, so no statistic is ever re-derived.
type Report struct {
	Definition *experiment.Definition

	ControlAggregate   inference.Aggregate
	TreatmentAggregate inference.Aggregate

	Primary    inference.Result
	Guardrails []decision.GuardrailResult
	// GuardrailAggregates holds the per-arm counts behind each guardrail
	// result, keyed by guardrail name, so persistence and rendering never
	// re-aggregate.
	GuardrailAggregates map[string]ArmAggregates
	Decision            decision.Decision

	RecommendedSampleSize int
}

// Run evaluates the experiment: primary metric first, then every guardrail.
// Guardrail inferences are mutually independent, so they run concurrently;
// results land in configuration order regardless of completion order.
func Run(ctx context.Context, def *experiment.Definition, in Input) (*Report, error) {
	logger := logging.New("pipeline")

	control := def.ControlLabel()
	treatment := def.TreatmentLabel()

	ctrlAgg, ok := in.Primary[control]
	if !ok {
		return nil, fmt.Errorf("%w: no primary records for control %q", ErrMissingVariant, control)
	}
	treatAgg, ok := in.Primary[treatment]
	if !ok {
		return nil, fmt.Errorf("%w: no primary records for treatment %q", ErrMissingVariant, treatment)
	}

	primary, err := inference.Evaluate(ctrlAgg, treatAgg, def.Alpha)
	if err != nil {
		return nil, fmt.Errorf("primary metric: %w", err)
	}
	logger.Info("primary metric evaluated",
		"experiment", def.ExperimentID,
		"rate_control", primary.RateControl,
		"rate_treatment", primary.RateTreatment,
		"p_value", primary.PValue,
		"significant", primary.Significant)

	guardrails := make([]decision.GuardrailResult, len(def.Guardrails))
	guardAggs := make([]ArmAggregates, len(def.Guardrails))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, gd := range def.Guardrails {
		g.Go(func() error {
			byVariant, ok := in.Guardrails[gd.Name]
			if !ok {
				// Absence must be explicit: a missing guardrail stream is
				// a configuration error, never silently treated as safe.
				return fmt.Errorf("%w: no records for guardrail %q", ErrMissingVariant, gd.Name)
			}
			gc, ok := byVariant[control]
			if !ok {
				return fmt.Errorf("%w: guardrail %q has no control records", ErrMissingVariant, gd.Name)
			}
			gt, ok := byVariant[treatment]
			if !ok {
				return fmt.Errorf("%w: guardrail %q has no treatment records", ErrMissingVariant, gd.Name)
			}
			res, err := inference.Evaluate(gc, gt, def.Alpha)
			if err != nil {
				return fmt.Errorf("guardrail %q: %w", gd.Name, err)
			}
			guardrails[i] = decision.GuardrailResult{
				Name:          gd.Name,
				Result:        res,
				HarmThreshold: gd.HarmThreshold,
			}
			guardAggs[i] = ArmAggregates{Control: gc, Treatment: gt}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recommended, err := power.RequiredSampleSize(def.BaselineRate, def.MDE, def.Alpha, def.Power)
	if err != nil {
		return nil, fmt.Errorf("required sample size: %w", err)
	}
	if ctrlAgg.Trials < int64(recommended) || treatAgg.Trials < int64(recommended) {
		logger.Warn("experiment is under-powered; the result is reported but should not be trusted",
			"recommended_per_variant", recommended,
			"control_trials", ctrlAgg.Trials,
			"treatment_trials", treatAgg.Trials)
	}

	dec, err := decision.Decide(primary, guardrails, def.Policy)
	if err != nil {
		return nil, fmt.Errorf("decide: %w", err)
	}
	logger.Info("decision reached", "experiment", def.ExperimentID, "verdict", string(dec.Verdict))

	byName := make(map[string]ArmAggregates, len(def.Guardrails))
	for i, gd := range def.Guardrails {
		byName[gd.Name] = guardAggs[i]
	}

	return &Report{
		Definition:          def,
		ControlAggregate:    ctrlAgg,
		TreatmentAggregate:  treatAgg,
		Primary:             primary,
		Guardrails:          guardrails,
		GuardrailAggregates: byName,
		Decision:            dec,

		RecommendedSampleSize: recommended,
	}, nil
}

// Package simulate generates synthetic experiment traffic.
//
// Users are bucketed with the production assignment function, then outcomes
// are drawn from per-variant Bernoulli distributions. The generator is a
// stand-in data source: the pipeline consumes its output exactly as it
// would consume real outcome records.
package simulate

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"liftgate/internal/assign"
	"liftgate/internal/experiment"
	"liftgate/internal/inference"
)

// ErrInvalidParams reports malformed generation parameters.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// Outcome is one user's binary result for one metric.
type Outcome struct {
	UserID    string
	Variant   string
	Converted bool
}

// Params controls one generation run. The seed fully determines the drawn
// outcomes; variant membership comes from the assignment hash and is not
// influenced by the seed at all.
type Params struct {
	Users int
	Seed  uint64
	// TrueLift is the simulated relative effect on the primary metric for
	// the treatment arm (e.g. 0.10 lifts a 12% baseline to 13.2%).
	TrueLift float64
	// GuardrailLifts maps guardrail name to the simulated relative effect
	// on that metric for the treatment arm. Missing entries default to 0.
	GuardrailLifts map[string]float64
}

// Dataset is the generated traffic for one experiment.
type Dataset struct {
	Primary    []Outcome
	Guardrails map[string][]Outcome
}

// Generate produces n users of synthetic traffic for the experiment.
func Generate(def *experiment.Definition, p Params) (*Dataset, error) {
	if p.Users <= 0 {
		return nil, fmt.Errorf("%w: users must be positive, got %d", ErrInvalidParams, p.Users)
	}

	control := def.ControlLabel()
	treatment := def.TreatmentLabel()

	primaryRates := map[string]float64{
		control:   def.BaselineRate,
		treatment: def.BaselineRate * (1 + p.TrueLift),
	}
	if r := primaryRates[treatment]; r < 0 || r > 1 {
		return nil, fmt.Errorf("%w: true treatment rate %v outside [0,1]", ErrInvalidParams, r)
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))

	ds := &Dataset{
		Primary:    make([]Outcome, 0, p.Users),
		Guardrails: make(map[string][]Outcome, len(def.Guardrails)),
	}
	for _, g := range def.Guardrails {
		ds.Guardrails[g.Name] = make([]Outcome, 0, p.Users)
	}

	for i := 0; i < p.Users; i++ {
		userID := fmt.Sprintf("user_%05d", i)
		variant, err := assign.Assign(userID, def.ExperimentID, def.Variants)
		if err != nil {
			return nil, fmt.Errorf("assign %s: %w", userID, err)
		}

		rate, tracked := primaryRates[variant]
		if !tracked {
			// Extra partition segments are assignable but not analyzed.
			continue
		}
		ds.Primary = append(ds.Primary, Outcome{
			UserID:    userID,
			Variant:   variant,
			Converted: rng.Float64() < rate,
		})

		for _, g := range def.Guardrails {
			base := g.GuardrailBaseline()
			gr := base
			if variant == treatment {
				gr = base * (1 + p.GuardrailLifts[g.Name])
			}
			ds.Guardrails[g.Name] = append(ds.Guardrails[g.Name], Outcome{
				UserID:    userID,
				Variant:   variant,
				Converted: rng.Float64() < gr,
			})
		}
	}

	return ds, nil
}

// AggregateOutcomes groups raw records into per-variant counts. Records are
// read-only input; the returned aggregates are freshly built each call.
func AggregateOutcomes(records []Outcome) map[string]inference.Aggregate {
	byVariant := make(map[string]inference.Aggregate)
	for _, r := range records {
		agg := byVariant[r.Variant]
		agg.Trials++
		if r.Converted {
			agg.Successes++
		}
		byVariant[r.Variant] = agg
	}
	return byVariant
}

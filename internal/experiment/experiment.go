// Package experiment defines the experiment configuration model shared by
// the CLI, the simulator, and the pipeline.
package experiment

import (
	"errors"
	"fmt"

	"liftgate/internal/assign"
	"liftgate/internal/decision"
)

// ErrInvalidDefinition reports a configuration that fails validation.
var ErrInvalidDefinition = errors.New("invalid experiment definition")

// PrimaryMetric is the stored name of the primary conversion metric. It is
// the label under which results are persisted and the metric column value
// that marks primary rows in outcome record files.
const PrimaryMetric = "conversion"

// GuardrailDef declares one guardrail metric to watch for regression.
type GuardrailDef struct {
	Name string `yaml:"name"`
	// HarmThreshold is a relative lift below which the guardrail counts as
	// harmed, e.g. -0.02 for a 2% regression.
	HarmThreshold float64 `yaml:"harm_threshold"`
	// BaselineRate is the metric's control-side rate, used only when
	// simulating traffic. Defaults to 0.5 if unset.
	BaselineRate float64 `yaml:"baseline_rate,omitempty"`
}

// Definition is one experiment's full configuration.
type Definition struct {
	Name         string `yaml:"name"`
	ExperimentID string `yaml:"experiment_id"`

	BaselineRate float64 `yaml:"baseline_rate"`
	// MDE is the minimum detectable effect, RELATIVE to BaselineRate.
	MDE   float64 `yaml:"minimum_detectable_effect"`
	Alpha float64 `yaml:"alpha"`
	Power float64 `yaml:"power"`

	// Variants partition [0,1) in order; the first segment is control,
	// the second is treatment.
	Variants assign.Partition `yaml:"variants"`

	Guardrails []GuardrailDef  `yaml:"guardrails"`
	Policy     decision.Policy `yaml:"policy"`
}

// Validate checks every numeric domain and the variant partition.
func (d *Definition) Validate() error {
	if d.ExperimentID == "" {
		return fmt.Errorf("%w: experiment_id is required", ErrInvalidDefinition)
	}
	if d.BaselineRate <= 0 || d.BaselineRate >= 1 {
		return fmt.Errorf("%w: baseline_rate %v outside (0,1)", ErrInvalidDefinition, d.BaselineRate)
	}
	if d.MDE == 0 {
		return fmt.Errorf("%w: minimum_detectable_effect must be non-zero", ErrInvalidDefinition)
	}
	if d.Alpha <= 0 || d.Alpha >= 1 {
		return fmt.Errorf("%w: alpha %v outside (0,1)", ErrInvalidDefinition, d.Alpha)
	}
	if d.Power <= 0 || d.Power >= 1 {
		return fmt.Errorf("%w: power %v outside (0,1)", ErrInvalidDefinition, d.Power)
	}
	if err := d.Variants.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(d.Guardrails))
	for i, g := range d.Guardrails {
		if g.Name == "" {
			return fmt.Errorf("%w: guardrail %d has empty name", ErrInvalidDefinition, i)
		}
		if seen[g.Name] {
			return fmt.Errorf("%w: duplicate guardrail %q", ErrInvalidDefinition, g.Name)
		}
		seen[g.Name] = true
		if g.BaselineRate < 0 || g.BaselineRate >= 1 {
			return fmt.Errorf("%w: guardrail %q baseline_rate %v outside [0,1)", ErrInvalidDefinition, g.Name, g.BaselineRate)
		}
	}
	return nil
}

// ControlLabel returns the label of the first partition segment.
func (d *Definition) ControlLabel() string { return d.Variants[0].Label }

// TreatmentLabel returns the label of the second partition segment.
// The decision engine compares exactly these two arms; extra segments are
// assignable but excluded from analysis.
func (d *Definition) TreatmentLabel() string { return d.Variants[1].Label }

// GuardrailBaseline returns the guardrail's simulation baseline rate,
// defaulting to 0.5 when unset.
func (g GuardrailDef) GuardrailBaseline() float64 {
	if g.BaselineRate == 0 {
		return 0.5
	}
	return g.BaselineRate
}

package experiment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"liftgate/internal/assign"
)

func validDefinition() Definition {
	return Definition{
		Name:         "test",
		ExperimentID: "exp_test",
		BaselineRate: 0.12,
		MDE:          0.10,
		Alpha:        0.05,
		Power:        0.80,
		Variants: assign.Partition{
			{Label: "A", Width: 0.5},
			{Label: "B", Width: 0.5},
		},
	}
}

func TestLoad_EmbeddedDefinitions(t *testing.T) {
	names := List()
	if len(names) == 0 {
		t.Fatal("no embedded definitions")
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			def, err := Load(name)
			if err != nil {
				t.Fatalf("Load(%q): %v", name, err)
			}
			if def.ExperimentID == "" {
				t.Error("loaded definition has empty experiment_id")
			}
			if err := def.Validate(); err != nil {
				t.Errorf("embedded definition invalid: %v", err)
			}
		})
	}
}

func TestLoad_AdsConversion(t *testing.T) {
	def, err := Load("ads-conversion")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if def.BaselineRate != 0.12 {
		t.Errorf("baseline = %v, want 0.12", def.BaselineRate)
	}
	if def.MDE != 0.10 {
		t.Errorf("mde = %v, want 0.10", def.MDE)
	}
	if len(def.Guardrails) != 2 {
		t.Fatalf("guardrails = %d, want 2", len(def.Guardrails))
	}
	if def.ControlLabel() != "A" || def.TreatmentLabel() != "B" {
		t.Errorf("arm labels = %q/%q, want A/B", def.ControlLabel(), def.TreatmentLabel())
	}
	if !def.Policy.RequireSignificance {
		t.Error("ads-conversion policy should require guardrail significance")
	}
}

func TestLoad_UnknownName(t *testing.T) {
	if _, err := Load("no-such-experiment"); err == nil {
		t.Fatal("Load of unknown name should fail")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	const doc = `
name: file-test
experiment_id: exp_file
baseline_rate: 0.05
minimum_detectable_effect: 0.2
alpha: 0.05
power: 0.8
variants:
  - label: control
    width: 0.5
  - label: treatment
    width: 0.5
guardrails:
  - name: latency
    harm_threshold: -0.03
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	def, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if def.ExperimentID != "exp_file" {
		t.Errorf("experiment_id = %q", def.ExperimentID)
	}
	if def.Guardrails[0].HarmThreshold != -0.03 {
		t.Errorf("harm_threshold = %v", def.Guardrails[0].HarmThreshold)
	}
}

func TestLoadFile_InvalidDefinitionRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	const doc = `
experiment_id: exp_bad
baseline_rate: 1.5
minimum_detectable_effect: 0.1
alpha: 0.05
power: 0.8
variants:
  - label: A
    width: 0.5
  - label: B
    width: 0.5
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("err = %v, want ErrInvalidDefinition", err)
	}
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		ok     bool
	}{
		{"valid", func(*Definition) {}, true},
		{"negative mde detects harm", func(d *Definition) { d.MDE = -0.1 }, true},
		{"missing id", func(d *Definition) { d.ExperimentID = "" }, false},
		{"baseline zero", func(d *Definition) { d.BaselineRate = 0 }, false},
		{"baseline one", func(d *Definition) { d.BaselineRate = 1 }, false},
		{"mde zero", func(d *Definition) { d.MDE = 0 }, false},
		{"alpha out of range", func(d *Definition) { d.Alpha = 1.5 }, false},
		{"power out of range", func(d *Definition) { d.Power = 0 }, false},
		{"bad partition", func(d *Definition) { d.Variants = d.Variants[:1] }, false},
		{"unnamed guardrail", func(d *Definition) {
			d.Guardrails = []GuardrailDef{{HarmThreshold: -0.02}}
		}, false},
		{"duplicate guardrail", func(d *Definition) {
			d.Guardrails = []GuardrailDef{
				{Name: "latency", HarmThreshold: -0.02},
				{Name: "latency", HarmThreshold: -0.05},
			}
		}, false},
		{"guardrail baseline out of range", func(d *Definition) {
			d.Guardrails = []GuardrailDef{{Name: "latency", BaselineRate: 1.0}}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDefinition()
			tt.mutate(&d)
			err := d.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestGuardrailDef_GuardrailBaseline(t *testing.T) {
	if b := (GuardrailDef{Name: "g"}).GuardrailBaseline(); b != 0.5 {
		t.Errorf("default baseline = %v, want 0.5", b)
	}
	if b := (GuardrailDef{Name: "g", BaselineRate: 0.9}).GuardrailBaseline(); b != 0.9 {
		t.Errorf("explicit baseline = %v, want 0.9", b)
	}
}

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"liftgate/internal/experiment"
	"liftgate/internal/inference"
	"liftgate/internal/pipeline"
	"liftgate/internal/simulate"
)

// loadDefinition resolves --file over --config.
func loadDefinition(name, path string) (*experiment.Definition, error) {
	if path != "" {
		return experiment.LoadFile(path)
	}
	return experiment.Load(name)
}

// parseGuardrailLifts parses repeated name=value flags into a lift map.
func parseGuardrailLifts(specs []string) (map[string]float64, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	lifts := make(map[string]float64, len(specs))
	for _, spec := range specs {
		name, val, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed guardrail lift %q, want name=value", spec)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("guardrail lift %q: %w", spec, err)
		}
		lifts[name] = f
	}
	return lifts, nil
}

// parseCounts parses "trials:successes".
func parseCounts(spec string) (inference.Aggregate, error) {
	t, s, ok := strings.Cut(spec, ":")
	if !ok {
		return inference.Aggregate{}, fmt.Errorf("malformed counts %q, want trials:successes", spec)
	}
	trials, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return inference.Aggregate{}, fmt.Errorf("counts %q: %w", spec, err)
	}
	successes, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return inference.Aggregate{}, fmt.Errorf("counts %q: %w", spec, err)
	}
	return inference.Aggregate{Trials: trials, Successes: successes}, nil
}

// inputFromCountFlags builds pipeline input from pre-aggregated count flags.
func inputFromCountFlags(def *experiment.Definition, control, treatment string, guardrails []string) (pipeline.Input, error) {
	ctrlAgg, err := parseCounts(control)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("--control: %w", err)
	}
	treatAgg, err := parseCounts(treatment)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("--treatment: %w", err)
	}

	in := pipeline.Input{
		Primary: map[string]inference.Aggregate{
			def.ControlLabel():   ctrlAgg,
			def.TreatmentLabel(): treatAgg,
		},
		Guardrails: make(map[string]map[string]inference.Aggregate),
	}

	for _, spec := range guardrails {
		name, counts, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return pipeline.Input{}, fmt.Errorf("malformed guardrail %q, want name=ct:cs:tt:ts", spec)
		}
		parts := strings.Split(counts, ":")
		if len(parts) != 4 {
			return pipeline.Input{}, fmt.Errorf("malformed guardrail %q, want name=ct:cs:tt:ts", spec)
		}
		gc, err := parseCounts(parts[0] + ":" + parts[1])
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("guardrail %q control: %w", name, err)
		}
		gt, err := parseCounts(parts[2] + ":" + parts[3])
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("guardrail %q treatment: %w", name, err)
		}
		in.Guardrails[name] = map[string]inference.Aggregate{
			def.ControlLabel():   gc,
			def.TreatmentLabel(): gt,
		}
	}
	return in, nil
}

// readRecordsCSV aggregates a CSV of raw outcome records into pipeline
// input. Expected columns: metric,user_id,variant,converted. A header row
// is skipped if present. The metric "conversion" is the primary; every
// other metric name is treated as a guardrail stream.
func readRecordsCSV(path string) (pipeline.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4

	primary := make([]simulate.Outcome, 0, 1024)
	guardrails := make(map[string][]simulate.Outcome)

	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("read records file: %w", err)
		}
		line++
		if line == 1 && strings.EqualFold(rec[0], "metric") {
			continue
		}

		converted, err := strconv.ParseBool(rec[3])
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("records line %d: converted %q: %w", line, rec[3], err)
		}
		outcome := simulate.Outcome{UserID: rec[1], Variant: rec[2], Converted: converted}

		if rec[0] == experiment.PrimaryMetric {
			primary = append(primary, outcome)
		} else {
			guardrails[rec[0]] = append(guardrails[rec[0]], outcome)
		}
	}

	in := pipeline.Input{
		Primary:    simulate.AggregateOutcomes(primary),
		Guardrails: make(map[string]map[string]inference.Aggregate, len(guardrails)),
	}
	for name, records := range guardrails {
		in.Guardrails[name] = simulate.AggregateOutcomes(records)
	}
	return in, nil
}

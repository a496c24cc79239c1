package pipeline

import (
	"fmt"

	"github.com/EricSchles/pfas-cancer-project/internal/table"
)

// CancerRecords extracts (State, Rate) pairs from the cancer incidence table.
// A blank Rate is kept as NaN.
func CancerRecords(f *table.Frame) ([]CancerRecord, error) {
	states, err := f.Column(StateColumn)
	if err != nil {
		return nil, fmt.Errorf("cancer: %w", err)
	}
	rates, err := f.FloatsOrNaN(RateColumn)
	if err != nil {
		return nil, fmt.Errorf("cancer: %w", err)
	}
	out := make([]CancerRecord, len(states))
	for i := range states {
		out[i] = CancerRecord{State: states[i], Rate: rates[i]}
	}
	return out, nil
}

// PopulationRecords extracts (State, estimate) pairs from a population table
// whose state column has already been normalized. Rows with an empty state
// are still returned; they fail every join. A blank estimate is kept as NaN.
func PopulationRecords(f *table.Frame, column string) ([]PopulationRecord, error) {
	states, err := f.Column(StateColumn)
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	est, err := f.FloatsOrNaN(column)
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	out := make([]PopulationRecord, len(states))
	for i := range states {
		out[i] = PopulationRecord{State: states[i], Estimate: est[i]}
	}
	return out, nil
}

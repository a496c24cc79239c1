package pipeline

import (
	"sort"

	"github.com/EricSchles/pfas-cancer-project/internal/table"
)

// StateCount is the number of facility rows recorded for one state.
type StateCount struct {
	State string
	Count int
}

// Counts is a per-state count table whose count column is called Label.
type Counts struct {
	Label string
	Rows  []StateCount
}

// CountByState groups facility rows by their State cell and counts each group.
// States absent from f produce no row; rows with an empty State are ignored.
// Callers must not rely on row order.
func CountByState(f *table.Frame, label string) (Counts, error) {
	keys, err := f.Column(StateColumn)
	if err != nil {
		return Counts{}, err
	}
	tally := map[string]int{}
	for _, k := range keys {
		if k == "" {
			continue
		}
		tally[k]++
	}
	out := Counts{Label: label, Rows: make([]StateCount, 0, len(tally))}
	for state, n := range tally {
		out.Rows = append(out.Rows, StateCount{State: state, Count: n})
	}
	// largest first, ties by code
	sort.Slice(out.Rows, func(i, j int) bool {
		if out.Rows[i].Count == out.Rows[j].Count {
			return out.Rows[i].State < out.Rows[j].State
		}
		return out.Rows[i].Count > out.Rows[j].Count
	})
	return out, nil
}

// Frame renders the counts as a two-column table (State, Label).
func (c Counts) Frame() *table.Frame {
	f := &table.Frame{Name: c.Label, Header: []string{StateColumn, c.Label}}
	for _, r := range c.Rows {
		f.Append([]string{r.State, formatInt(r.Count)})
	}
	return f
}

package pipeline

import (
	"fmt"
	"strconv"

	"github.com/EricSchles/pfas-cancer-project/internal/table"
)

// Column names shared by the inputs and the summary table.
const (
	StateColumn             = "State"
	RateColumn              = "Rate"
	NPDESFlagColumn         = "NPDES_FLAG"
	NPDESCountColumn        = "npdes_count"
	NoNPDESCountColumn      = "no_npdes_count"
	CountColumn             = "count"
	DefaultPopulationColumn = "POPESTIMATE2019"
)

// NPDES flag values in the facility registry.
const (
	FlagYes = "Y"
	FlagNo  = "N"
)

// CancerRecord is one state's incidence per 100,000 population.
type CancerRecord struct {
	State string
	Rate  float64
}

// PopulationRecord is one state's population estimate, keyed by code after normalization.
type PopulationRecord struct {
	State    string
	Estimate float64
}

// Row is one line of the state-level summary. Rate and Population hold
// per-100k and absolute values until Rescale runs, then absolute incidence
// and units of 100,000 people.
type Row struct {
	State        string
	Rate         float64
	NPDESCount   int
	NoNPDESCount int
	Count        int
	Population   float64
}

// Summary is the joined state-level table.
type Summary struct {
	PopulationColumn string
	Rows             []Row
}

func (s *Summary) popColumn() string {
	if s.PopulationColumn == "" {
		return DefaultPopulationColumn
	}
	return s.PopulationColumn
}

// Header returns the output column order.
func (s *Summary) Header() []string {
	return []string{StateColumn, RateColumn, NPDESCountColumn, NoNPDESCountColumn, CountColumn, s.popColumn()}
}

// Frame renders the summary as a string table ready for CSV output.
func (s *Summary) Frame() *table.Frame {
	f := &table.Frame{Name: "summary", Header: s.Header()}
	for _, r := range s.Rows {
		f.Append([]string{
			r.State,
			formatFloat(r.Rate),
			formatInt(r.NPDESCount),
			formatInt(r.NoNPDESCount),
			formatInt(r.Count),
			formatFloat(r.Population),
		})
	}
	return f
}

// Column returns a numeric column of the summary by name.
func (s *Summary) Column(name string) ([]float64, error) {
	out := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		switch name {
		case RateColumn:
			out[i] = r.Rate
		case NPDESCountColumn:
			out[i] = float64(r.NPDESCount)
		case NoNPDESCountColumn:
			out[i] = float64(r.NoNPDESCount)
		case CountColumn:
			out[i] = float64(r.Count)
		case s.popColumn():
			out[i] = r.Population
		default:
			return nil, fmt.Errorf("%w: %q in summary", table.ErrColumnNotFound, name)
		}
	}
	return out, nil
}

// SummaryFromFrame reads a previously written summary table back. Extra
// columns, such as a leading index column, are ignored.
func SummaryFromFrame(f *table.Frame, popColumn string) (*Summary, error) {
	if popColumn == "" {
		popColumn = DefaultPopulationColumn
	}
	states, err := f.Column(StateColumn)
	if err != nil {
		return nil, err
	}
	cols := map[string][]float64{}
	for _, name := range []string{RateColumn, NPDESCountColumn, NoNPDESCountColumn, CountColumn, popColumn} {
		vals, err := f.Floats(name)
		if err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
		cols[name] = vals
	}
	s := &Summary{PopulationColumn: popColumn, Rows: make([]Row, len(states))}
	for i, st := range states {
		s.Rows[i] = Row{
			State:        st,
			Rate:         cols[RateColumn][i],
			NPDESCount:   int(cols[NPDESCountColumn][i]),
			NoNPDESCount: int(cols[NoNPDESCountColumn][i]),
			Count:        int(cols[CountColumn][i]),
			Population:   cols[popColumn][i],
		}
	}
	return s, nil
}

func formatFloat(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

func formatInt(n int) string { return strconv.Itoa(n) }

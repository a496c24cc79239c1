package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/EricSchles/pfas-cancer-project/internal/states"
	"github.com/EricSchles/pfas-cancer-project/internal/table"
)

// ErrUnmappedStates is returned in strict mode when population rows name a
// region missing from the abbreviation table.
var ErrUnmappedStates = errors.New("unmapped state names")

// Sources names the three input files.
type Sources struct {
	FacilitiesPath  string
	FacilitiesSheet string
	CancerPath      string
	PopulationPath  string
}

// Inputs holds the raw tables for one run.
type Inputs struct {
	Facilities *table.Frame
	Cancer     *table.Frame
	Population *table.Frame
}

// Load reads every source through the table reader registry.
func Load(src Sources) (Inputs, error) {
	var in Inputs
	var err error
	in.Facilities, err = table.Open(src.FacilitiesPath, table.Options{SheetName: src.FacilitiesSheet})
	if err != nil {
		return Inputs{}, fmt.Errorf("load facilities: %w", err)
	}
	in.Cancer, err = table.Open(src.CancerPath, table.Options{})
	if err != nil {
		return Inputs{}, fmt.Errorf("load cancer incidence: %w", err)
	}
	in.Population, err = table.Open(src.PopulationPath, table.Options{})
	if err != nil {
		return Inputs{}, fmt.Errorf("load population: %w", err)
	}
	return in, nil
}

// Runner executes the state-level join and rescale.
type Runner struct {
	// PopulationColumn names the population estimate column. Defaults to POPESTIMATE2019.
	PopulationColumn string
	// StrictStates fails the run when a population row cannot be mapped to a code.
	StrictStates bool
	Logger       *slog.Logger
}

// Report describes what happened during a run besides the summary itself.
type Report struct {
	Facilities      int
	NPDESFacilities int
	NoNPDES         int
	Unmapped        []string
}

// Run counts facilities, joins all sources on the state code and rescales the
// rate to absolute incidence. The population frame is normalized in place.
func (r *Runner) Run(in Inputs) (*Summary, *Report, error) {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	popCol := r.PopulationColumn
	if popCol == "" {
		popCol = DefaultPopulationColumn
	}

	npdes, err := in.Facilities.Where(NPDESFlagColumn, FlagYes)
	if err != nil {
		return nil, nil, fmt.Errorf("facilities: %w", err)
	}
	noNPDES, err := in.Facilities.Where(NPDESFlagColumn, FlagNo)
	if err != nil {
		return nil, nil, fmt.Errorf("facilities: %w", err)
	}
	rep := &Report{Facilities: in.Facilities.Len(), NPDESFacilities: npdes.Len(), NoNPDES: noNPDES.Len()}

	npdesCounts, err := CountByState(npdes, NPDESCountColumn)
	if err != nil {
		return nil, nil, fmt.Errorf("count npdes facilities: %w", err)
	}
	noCounts, err := CountByState(noNPDES, NoNPDESCountColumn)
	if err != nil {
		return nil, nil, fmt.Errorf("count non-npdes facilities: %w", err)
	}
	allCounts, err := CountByState(in.Facilities, CountColumn)
	if err != nil {
		return nil, nil, fmt.Errorf("count facilities: %w", err)
	}
	log.Debug("counted facilities",
		"facilities", rep.Facilities,
		"npdes_states", len(npdesCounts.Rows),
		"no_npdes_states", len(noCounts.Rows),
		"states", len(allCounts.Rows))

	cancer, err := CancerRecords(in.Cancer)
	if err != nil {
		return nil, nil, err
	}

	unmapped, err := states.Normalize(in.Population)
	if err != nil {
		return nil, nil, fmt.Errorf("normalize population states: %w", err)
	}
	rep.Unmapped = unmapped
	if len(unmapped) > 0 {
		if r.StrictStates {
			return nil, rep, fmt.Errorf("%w: %s", ErrUnmappedStates, strings.Join(unmapped, ", "))
		}
		log.Warn("population rows with unmapped state names will be dropped", "names", unmapped)
	}
	pop, err := PopulationRecords(in.Population, popCol)
	if err != nil {
		return nil, nil, err
	}

	rows := Join(cancer, npdesCounts, noCounts, allCounts, pop)
	log.Debug("joined sources", "cancer_rows", len(cancer), "population_rows", len(pop), "joined_rows", len(rows))
	Rescale(rows)
	return &Summary{PopulationColumn: popCol, Rows: rows}, rep, nil
}

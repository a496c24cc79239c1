package cmd

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/EricSchles/pfas-cancer-project/internal/export"
	"github.com/EricSchles/pfas-cancer-project/internal/model"
	"github.com/EricSchles/pfas-cancer-project/internal/pipeline"
)

var (
	runFacilities   string
	runSheet        string
	runCancer       string
	runPopulation   string
	runPopColumn    string
	runOutput       string
	runParquet      string
	runSQLite       string
	runStrictStates bool
	runFit          bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the state-level summary from the three source files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyRunFlags(cmd)
		out := cmd.OutOrStdout()
		runID := uuid.NewString()
		log := logger.With("run_id", runID)

		in, err := pipeline.Load(sources(cfg))
		if err != nil {
			return err
		}
		log.Debug("loaded sources",
			"facilities", in.Facilities.Len(),
			"cancer", in.Cancer.Len(),
			"population", in.Population.Len())

		runner := &pipeline.Runner{
			PopulationColumn: cfg.PopulationColumn,
			StrictStates:     cfg.StrictStates,
			Logger:           log,
		}
		sum, rep, err := runner.Run(in)
		if err != nil {
			return err
		}
		if len(rep.Unmapped) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %d population name(s) not in the abbreviation table were dropped\n", len(rep.Unmapped))
		}
		if len(sum.Rows) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no state is present in every source; the summary is empty")
		}

		if err := export.WriteCSV(cfg.OutputPath, sum); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote %d state rows to %s\n", len(sum.Rows), cfg.OutputPath)

		if cfg.ParquetPath != "" {
			if err := export.WriteParquet(cfg.ParquetPath, sum); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote parquet to %s\n", cfg.ParquetPath)
		}

		var res *model.Result
		if runFit && len(sum.Rows) > 0 {
			params, done := fitParams(cmd)
			res, err = model.FitSummary(sum, params)
			done()
			if err != nil {
				return fmt.Errorf("fit model: %w", err)
			}
			printFit(out, res)
		}

		if cfg.SQLitePath != "" {
			store, err := export.OpenStore(cfg.SQLitePath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveRun(cmd.Context(), runID, time.Now(), sum, rep.Unmapped); err != nil {
				return err
			}
			if res != nil {
				if err := store.SaveFit(cmd.Context(), runID, res); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "✓ Stored run %s in %s\n", runID, cfg.SQLitePath)
		}
		return nil
	},
}

func applyRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("facilities") {
		cfg.FacilitiesPath = runFacilities
	}
	if f.Changed("sheet") {
		cfg.FacilitiesSheet = runSheet
	}
	if f.Changed("cancer") {
		cfg.CancerPath = runCancer
	}
	if f.Changed("population") {
		cfg.PopulationPath = runPopulation
	}
	if f.Changed("pop-column") {
		cfg.PopulationColumn = runPopColumn
	}
	if f.Changed("output") {
		cfg.OutputPath = runOutput
	}
	if f.Changed("parquet") {
		cfg.ParquetPath = runParquet
	}
	if f.Changed("sqlite") {
		cfg.SQLitePath = runSQLite
	}
	if f.Changed("strict-states") {
		cfg.StrictStates = runStrictStates
	}
	applyModelFlags(cmd)
}

// printFit mirrors the exploratory output: in-sample MAE then the importance map.
func printFit(w io.Writer, res *model.Result) {
	fmt.Fprintf(w, "fit %g\n", res.MAE)
	keys := make([]string, 0, len(res.Importances))
	for k := range res.Importances {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprint(w, "{")
	for i, k := range keys {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "'%s': %g", k, res.Importances[k])
	}
	fmt.Fprintln(w, "}")
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runFacilities, "facilities", "", "facility spreadsheet (.xlsx or .csv)")
	runCmd.Flags().StringVar(&runSheet, "sheet", "", "XLSX: worksheet holding facility rows")
	runCmd.Flags().StringVar(&runCancer, "cancer", "", "cancer incidence CSV")
	runCmd.Flags().StringVar(&runPopulation, "population", "", "census population CSV")
	runCmd.Flags().StringVar(&runPopColumn, "pop-column", "", "population estimate column (e.g. POPESTIMATE2019)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "summary CSV path")
	runCmd.Flags().StringVar(&runParquet, "parquet", "", "also write the summary as Parquet to this path")
	runCmd.Flags().StringVar(&runSQLite, "sqlite", "", "also store the run in this SQLite database")
	runCmd.Flags().BoolVar(&runStrictStates, "strict-states", false, "fail when a population state name is not in the abbreviation table")
	runCmd.Flags().BoolVar(&runFit, "fit", false, "fit the gradient boosting model on the summary")
	addModelFlags(runCmd)
}

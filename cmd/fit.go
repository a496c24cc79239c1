package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EricSchles/pfas-cancer-project/internal/export"
	"github.com/EricSchles/pfas-cancer-project/internal/model"
	"github.com/EricSchles/pfas-cancer-project/internal/pipeline"
	"github.com/EricSchles/pfas-cancer-project/internal/table"
	"github.com/EricSchles/pfas-cancer-project/internal/utils"
)

var (
	fitRunID  string
	fitSQLite string
	fitJSON   bool

	modelEstimators   int
	modelLearningRate float64
	modelSubsample    float64
	modelMaxDepth     int
	modelSeed         int64
)

var fitCmd = &cobra.Command{
	Use:   "fit [summary.csv]",
	Short: "Fit the exploratory regression on a state-level summary",
	Long: `Fits gradient boosted trees of the rescaled Rate on npdes_count and count.
The summary comes from a CSV written by "run", or from a stored run with --run.
Reported errors are in-sample; no data is held out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyModelFlags(cmd)
		if cmd.Flags().Changed("sqlite") {
			cfg.SQLitePath = fitSQLite
		}
		sum, err := loadSummary(cmd, args)
		if err != nil {
			return err
		}
		params, done := fitParams(cmd)
		res, err := model.FitSummary(sum, params)
		done()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if fitJSON {
			payload := map[string]any{
				"mae":         res.MAE,
				"mse":         res.MSE,
				"importances": res.Importances,
				"predictions": res.Predictions,
			}
			if res.Linear != nil {
				payload["ols"] = res.Linear
			}
			b, err := utils.PrettyJSON(payload)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		printFit(out, res)
		return nil
	},
}

// loadSummary reads a summary from a CSV argument or from the SQLite store.
func loadSummary(cmd *cobra.Command, args []string) (*pipeline.Summary, error) {
	if fitRunID != "" {
		if cfg.SQLitePath == "" {
			return nil, errors.New("--run requires sqlite_path to be configured")
		}
		store, err := export.OpenStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadSummary(cmd.Context(), fitRunID)
	}
	path := cfg.OutputPath
	if len(args) == 1 {
		path = args[0]
	}
	f, err := table.Open(path, table.Options{})
	if err != nil {
		return nil, err
	}
	return pipeline.SummaryFromFrame(f, cfg.PopulationColumn)
}

func addModelFlags(c *cobra.Command) {
	c.Flags().IntVar(&modelEstimators, "estimators", 0, "boosting stages (overrides config)")
	c.Flags().Float64Var(&modelLearningRate, "learning-rate", 0, "shrinkage per stage (overrides config)")
	c.Flags().Float64Var(&modelSubsample, "subsample", 0, "row fraction per stage (overrides config)")
	c.Flags().IntVar(&modelMaxDepth, "max-depth", 0, "tree depth (overrides config)")
	c.Flags().Int64Var(&modelSeed, "seed", 0, "subsampling seed (overrides config)")
}

func applyModelFlags(c *cobra.Command) {
	f := c.Flags()
	if f.Changed("estimators") {
		cfg.ModelEstimators = modelEstimators
	}
	if f.Changed("learning-rate") {
		cfg.ModelLearningRate = modelLearningRate
	}
	if f.Changed("subsample") {
		cfg.ModelSubsample = modelSubsample
	}
	if f.Changed("max-depth") {
		cfg.ModelMaxDepth = modelMaxDepth
	}
	if f.Changed("seed") {
		cfg.ModelSeed = modelSeed
	}
}

func init() {
	rootCmd.AddCommand(fitCmd)
	fitCmd.Flags().StringVar(&fitRunID, "run", "", "fit a run stored in the SQLite database")
	fitCmd.Flags().StringVar(&fitSQLite, "sqlite", "", "SQLite database holding stored runs (overrides config)")
	fitCmd.Flags().BoolVar(&fitJSON, "json", false, "print the fit as JSON")
	addModelFlags(fitCmd)
}

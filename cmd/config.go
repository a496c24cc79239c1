package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/EricSchles/pfas-cancer-project/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set pfascancer configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "facilities_path: %s\n", cfg.FacilitiesPath)
		if cfg.FacilitiesSheet != "" {
			fmt.Fprintf(out, "facilities_sheet: %s\n", cfg.FacilitiesSheet)
		}
		fmt.Fprintf(out, "cancer_path: %s\n", cfg.CancerPath)
		fmt.Fprintf(out, "population_path: %s\n", cfg.PopulationPath)
		fmt.Fprintf(out, "population_column: %s\n", cfg.PopulationColumn)
		fmt.Fprintf(out, "output_path: %s\n", cfg.OutputPath)
		if cfg.ParquetPath != "" {
			fmt.Fprintf(out, "parquet_path: %s\n", cfg.ParquetPath)
		}
		if cfg.SQLitePath != "" {
			fmt.Fprintf(out, "sqlite_path: %s\n", cfg.SQLitePath)
		}
		fmt.Fprintf(out, "strict_states: %t\n", cfg.StrictStates)
		fmt.Fprintf(out, "model_learning_rate: %g\n", cfg.ModelLearningRate)
		fmt.Fprintf(out, "model_estimators: %d\n", cfg.ModelEstimators)
		fmt.Fprintf(out, "model_subsample: %g\n", cfg.ModelSubsample)
		fmt.Fprintf(out, "model_max_depth: %d\n", cfg.ModelMaxDepth)
		fmt.Fprintf(out, "model_min_samples_split: %d\n", cfg.ModelMinSamplesSplit)
		fmt.Fprintf(out, "model_seed: %d\n", cfg.ModelSeed)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "facilities_path":
			cfg.FacilitiesPath = val
		case "facilities_sheet":
			cfg.FacilitiesSheet = val
		case "cancer_path":
			cfg.CancerPath = val
		case "population_path":
			cfg.PopulationPath = val
		case "population_column":
			cfg.PopulationColumn = val
		case "output_path":
			cfg.OutputPath = val
		case "parquet_path":
			cfg.ParquetPath = val
		case "sqlite_path":
			cfg.SQLitePath = val
		case "strict_states":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for strict_states: %v", val)
			}
			cfg.StrictStates = b
		case "model_learning_rate":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for model_learning_rate: %v", val)
			}
			cfg.ModelLearningRate = f
		case "model_estimators":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for model_estimators: %v", val)
			}
			cfg.ModelEstimators = i
		case "model_subsample":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 || f > 1 {
				return fmt.Errorf("invalid float for model_subsample: %v (use 0 < x <= 1)", val)
			}
			cfg.ModelSubsample = f
		case "model_max_depth":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for model_max_depth: %v", val)
			}
			cfg.ModelMaxDepth = i
		case "model_min_samples_split":
			i, err := strconv.Atoi(val)
			if err != nil || i < 2 {
				return fmt.Errorf("invalid int for model_min_samples_split: %v", val)
			}
			cfg.ModelMinSamplesSplit = i
		case "model_seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for model_seed: %w", err)
			}
			cfg.ModelSeed = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/EricSchles/pfas-cancer-project/internal/utils"
)

// Global configuration structure.
type Global struct {
	// Inputs
	FacilitiesPath   string `mapstructure:"facilities_path" yaml:"facilities_path"`
	FacilitiesSheet  string `mapstructure:"facilities_sheet" yaml:"facilities_sheet"`
	CancerPath       string `mapstructure:"cancer_path" yaml:"cancer_path"`
	PopulationPath   string `mapstructure:"population_path" yaml:"population_path"`
	PopulationColumn string `mapstructure:"population_column" yaml:"population_column"`

	// Outputs
	OutputPath  string `mapstructure:"output_path" yaml:"output_path"`
	ParquetPath string `mapstructure:"parquet_path" yaml:"parquet_path"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`

	StrictStates bool `mapstructure:"strict_states" yaml:"strict_states"`

	// Gradient boosting
	ModelLearningRate    float64 `mapstructure:"model_learning_rate" yaml:"model_learning_rate"`
	ModelEstimators      int     `mapstructure:"model_estimators" yaml:"model_estimators"`
	ModelSubsample       float64 `mapstructure:"model_subsample" yaml:"model_subsample"`
	ModelMaxDepth        int     `mapstructure:"model_max_depth" yaml:"model_max_depth"`
	ModelMinSamplesSplit int     `mapstructure:"model_min_samples_split" yaml:"model_min_samples_split"`
	ModelSeed            int64   `mapstructure:"model_seed" yaml:"model_seed"`
}

// DefaultPath returns ~/.pfascancer/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".pfascancer", "config.yaml"), nil
}

// Save writes the given configuration to cfgFile, or to the default path
// when cfgFile is empty, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("PFASCANCER")
	v.AutomaticEnv()

	v.SetDefault("facilities_path", "data/Facilities in Industries that May be Handling PFAS Data 07-20-2021.xlsx")
	v.SetDefault("facilities_sheet", "Data")
	v.SetDefault("cancer_path", "data/uscs_map_incidence_all.csv")
	v.SetDefault("population_path", "data/2019_Census_US_Population_Data_By_State_Lat_Long.csv")
	v.SetDefault("population_column", "POPESTIMATE2019")
	v.SetDefault("output_path", "data/state_level_cancer_count_and_pfas_levels.csv")
	v.SetDefault("parquet_path", "")
	v.SetDefault("sqlite_path", "")
	v.SetDefault("strict_states", false)
	v.SetDefault("model_learning_rate", 0.0001)
	v.SetDefault("model_estimators", 100000)
	v.SetDefault("model_subsample", 0.8)
	v.SetDefault("model_max_depth", 4)
	v.SetDefault("model_min_samples_split", 2)
	v.SetDefault("model_seed", 0)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".pfascancer"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for _, p := range []*string{&c.FacilitiesPath, &c.CancerPath, &c.PopulationPath, &c.OutputPath, &c.ParquetPath, &c.SQLitePath} {
		expanded, err := utils.ExpandHome(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}
	return &c, nil
}

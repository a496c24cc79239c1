package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/EricSchles/pfas-cancer-project/internal/config"
)

var (
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pfascancer",
	Short: "Join PFAS facility, cancer incidence and census data by state",
	Long: `pfascancer merges EPA PFAS facility records, state cancer incidence rates and
census population estimates into one state-level table, converts the per-100,000
incidence rate into an absolute count, and fits an exploratory regression of
incidence on facility counts.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.pfascancer/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/EricSchles/pfas-cancer-project/internal/analysis"
	"github.com/EricSchles/pfas-cancer-project/internal/model"
	"github.com/EricSchles/pfas-cancer-project/internal/utils"
)

var (
	statsOutput string
	statsFit    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [summary.csv]",
	Short: "Describe a state-level summary as a Markdown report",
	Long: `Computes column statistics, Pearson and Spearman correlations of the facility
counts against the rescaled Rate, and a two-sample KS comparison. With --fit the
gradient boosting fit is appended.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyModelFlags(cmd)
		sum, err := loadSummary(cmd, args)
		if err != nil {
			return err
		}
		name := filepath.Base(cfg.OutputPath)
		if len(args) == 1 {
			name = filepath.Base(args[0])
		}
		rep, err := analysis.Analyze(name, sum)
		if err != nil {
			return err
		}
		if statsFit && len(sum.Rows) > 0 {
			params, done := fitParams(cmd)
			res, err := model.FitSummary(sum, params)
			done()
			if err != nil {
				return fmt.Errorf("fit model: %w", err)
			}
			rep.AttachFit(res)
		}
		md := rep.Markdown()
		if statsOutput == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		if err := utils.EnsureDir(filepath.Dir(statsOutput)); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(statsOutput, []byte(md)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Report written to %s\n", statsOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "", "write the report to a file instead of stdout")
	statsCmd.Flags().BoolVar(&statsFit, "fit", false, "append the gradient boosting fit")
	addModelFlags(statsCmd)
}

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/EricSchles/pfas-cancer-project/internal/export"
)

var runsSQLite string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs stored in the SQLite database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("sqlite") {
			cfg.SQLitePath = runsSQLite
		}
		if cfg.SQLitePath == "" {
			return errors.New("no sqlite_path configured (use --sqlite or config set sqlite_path)")
		}
		store, err := export.OpenStore(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()
		runs, err := store.ListRuns(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs stored")
			return nil
		}
		for _, r := range runs {
			mae := "-"
			if r.MAE.Valid {
				mae = fmt.Sprintf("%g", r.MAE.Float64)
			}
			fmt.Fprintf(out, "%s  %s  rows=%d  pop=%s  mae=%s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Rows, r.PopulationColumn, mae)
			if len(r.Unmapped) > 0 {
				fmt.Fprintf(out, "    unmapped: %s\n", strings.Join(r.Unmapped, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&runsSQLite, "sqlite", "", "SQLite database holding stored runs (overrides config)")
}

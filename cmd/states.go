package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/EricSchles/pfas-cancer-project/internal/states"
)

var statesLookup string

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "Print the state name to USPS code table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if statesLookup != "" {
			code, ok := states.Lookup(statesLookup)
			if !ok {
				return fmt.Errorf("no code for %q", statesLookup)
			}
			fmt.Fprintln(out, code)
			return nil
		}
		table := states.Abbreviations()
		names := make([]string, 0, len(table))
		for n := range table {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(out, "%-28s %s\n", n, table[n])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statesCmd)
	statesCmd.Flags().StringVar(&statesLookup, "lookup", "", "print the code for one state name")
}

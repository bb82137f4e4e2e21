package main

import (
	"fmt"

	"github.com/dusk-indust/traitgen/internal/status"
	"github.com/spf13/cobra"
)

// statusCmd lists previous runs found in the output directory.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the reports of previous runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		runs, err := status.ListRuns(cfg.OutputDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintf(out, "No runs found in %s.\n", cfg.OutputDir)
			fmt.Fprintln(out, "Run 'traitgen generate' to create a collection.")
			return nil
		}
		for i, r := range runs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s  %s\n", r.ExportedAt, r.Path)
			fmt.Fprint(out, status.Format(r.Report))
		}
		return nil
	},
}

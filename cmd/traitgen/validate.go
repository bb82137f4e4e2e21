package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dusk-indust/traitgen/internal/status"
	"github.com/spf13/cobra"
)

var (
	validateKuzu string
	validateJSON bool
)

// validateCmd checks the catalog and lints the rule table.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the asset catalog and lint the rule table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := openProject(nil)
		if err != nil {
			return err
		}

		store, err := storeFactory(validateKuzu)()
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := p.Validate(cmd.Context(), store)
		if err != nil {
			return err
		}

		if validateJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			fmt.Fprint(cmd.OutOrStdout(), status.FormatValidation(report))
		}

		if !report.IsValid() {
			return errors.New("catalog is invalid")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateKuzu, "kuzu", "", "build the rule graph in KuzuDB at this path (\":memory:\" for in-memory; cgo builds only)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the report as JSON")
}

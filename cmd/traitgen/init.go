package main

import (
	"fmt"

	"github.com/dusk-indust/traitgen/internal/scaffold"
	"github.com/spf13/cobra"
)

var initForce bool

// initCmd writes a starter project.
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a starter traitgen.yml, assets directory and MCP entry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		out := cmd.OutOrStdout()
		if err := scaffold.Init(dir, initForce, out); err != nil {
			return err
		}
		fmt.Fprintln(out, "\nSetup complete. Add layers under assets/ and run 'traitgen validate'.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
}

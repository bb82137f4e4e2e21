package main

import (
	"fmt"

	"github.com/dusk-indust/traitgen/internal/export"
	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/dusk-indust/traitgen/internal/rules"
	"github.com/spf13/cobra"
)

var (
	diagramKuzu      string
	diagramOption    string
	diagramDirection string
	diagramDepth     int
)

// diagramCmd prints the rule table as a Mermaid diagram.
var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Print the rule table as a Mermaid diagram",
	Long: `Prints the rule table as a Mermaid graph. With --option, prints the
forced and dependent chains reachable from that option instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rs, err := rules.Compile(cfg.Rules)
		if err != nil {
			return err
		}

		store, err := storeFactory(diagramKuzu)()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		if err := graph.BuildRuleGraph(ctx, store, rs); err != nil {
			return err
		}

		if diagramOption != "" {
			chains, err := store.GetDependencies(ctx, diagramOption, graph.Direction(diagramDirection), diagramDepth)
			if err != nil {
				return err
			}
			for _, c := range chains {
				fmt.Fprintf(cmd.OutOrStdout(), "%d  %v\n", c.Depth, c.Nodes)
			}
			return nil
		}

		mermaid, err := export.GenerateMermaid(ctx, store)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), mermaid)
		return nil
	},
}

func init() {
	f := diagramCmd.Flags()
	f.StringVar(&diagramKuzu, "kuzu", "", "build the rule graph in KuzuDB at this path (cgo builds only)")
	f.StringVar(&diagramOption, "option", "", "print chains from this rule key instead of the diagram")
	f.StringVar(&diagramDirection, "direction", string(graph.DirectionDownstream), "chain direction: upstream or downstream")
	f.IntVar(&diagramDepth, "depth", 5, "maximum chain depth")
}

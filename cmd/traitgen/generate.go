package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/dusk-indust/traitgen/internal/config"
	"github.com/dusk-indust/traitgen/internal/orchestrator"
	"github.com/dusk-indust/traitgen/internal/sampler"
	"github.com/dusk-indust/traitgen/internal/status"
	"github.com/spf13/cobra"
)

var (
	genCount      int
	genOutputDir  string
	genAssetsDir  string
	genBatchWidth int
	genSeed       uint64
	genNoExport   bool
	genJSON       bool
	genQuiet      bool
)

// generateCmd runs one generation and writes the collection export.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate unique combinations and export them as JSON",
	Long: `Generates up to --count unique combinations. When the rules leave fewer
unique combinations than requested, the run stops after count x
attemptMultiplier attempts and reports a shortfall.

Interrupting the run keeps the combinations accepted so far.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.IntVarP(&genCount, "count", "n", 0, "number of combinations, at least 1 (default: config count)")
	f.StringVarP(&genOutputDir, "out", "o", "", "output directory (default: config outputDir)")
	f.StringVar(&genAssetsDir, "assets", "", "asset directory (default: config assetsDir)")
	f.IntVar(&genBatchWidth, "batch-width", 0, "concurrent attempts per round (default: config batchWidth)")
	f.Uint64Var(&genSeed, "seed", 0, "seed the sampler for reproducible runs (0: random)")
	f.BoolVar(&genNoExport, "no-export", false, "skip writing the collection file")
	f.BoolVar(&genJSON, "json", false, "print the report as JSON")
	f.BoolVarP(&genQuiet, "quiet", "q", false, "do not print progress")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("count") && genCount <= 0 {
		return fmt.Errorf("--count must be positive, got %d", genCount)
	}

	p, err := openProject(func(cfg *config.ProjectConfig) {
		flags := cmd.Flags()
		if flags.Changed("count") {
			cfg.Count = genCount
		}
		if flags.Changed("out") {
			cfg.OutputDir = genOutputDir
		}
		if flags.Changed("assets") {
			cfg.AssetsDir = genAssetsDir
		}
		if flags.Changed("batch-width") {
			cfg.BatchWidth = genBatchWidth
		}
	})
	if err != nil {
		return err
	}

	var src sampler.Source
	if genSeed != 0 {
		src = sampler.NewSeeded(genSeed)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := generate(ctx, p.Orchestrator(src), p.Config.Count, !genQuiet)
	if res == nil {
		return err
	}
	runErr := err

	report := status.NewReport(res)
	if !genNoExport {
		path, err := p.Export(res)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	}

	if genJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), status.Format(report))
	}
	return runErr
}

// generate runs o while streaming progress lines to stderr when showProgress
// is set.
func generate(ctx context.Context, o *orchestrator.Orchestrator, count int, showProgress bool) (*orchestrator.Result, error) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range o.Progress() {
			if showProgress {
				fmt.Fprintln(os.Stderr, orchestrator.FormatProgress(ev))
			}
		}
	}()

	res, err := o.Generate(ctx, count)
	o.Close()
	wg.Wait()
	return res, err
}

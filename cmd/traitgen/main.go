package main

import (
	"fmt"
	"os"

	"github.com/dusk-indust/traitgen/internal/config"
	"github.com/dusk-indust/traitgen/internal/logging"
	"github.com/dusk-indust/traitgen/internal/project"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set by goreleaser at build time.
var version = "dev"

var (
	// Global flags
	configPath string
	verbose    bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "traitgen",
	Short: "Generate unique weighted trait combinations from layered assets",
	Long: `traitgen builds a trait catalog from a directory of layered assets,
applies a rule table (incompatibilities, forced pairings, dependent traits,
exclusive groups, conditional rarity) and generates unique combinations
ranked by rarity.

Project settings live in traitgen.yml; TRAITGEN_* environment variables
and command flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "project file or directory holding traitgen.yml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(initCmd, generateCmd, validateCmd, diagramCmd, statusCmd, serveMCPCmd, versionCmd)
}

// loadConfig reads the project configuration. Logging switches to debug
// when the file or the environment asks for it.
func loadConfig() (*config.ProjectConfig, error) {
	cfg, err := project.LoadConfig(configPath, nil)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose && !verbose {
		verbose = true
		if l, err := logging.New(true); err == nil {
			logger = l
		}
	}
	return cfg, nil
}

// openProject loads the configuration, lets apply adjust it, then discovers
// assets and builds the catalog.
func openProject(apply func(*config.ProjectConfig)) (*project.Project, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if apply != nil {
		apply(cfg)
	}
	return project.Open(cfg, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

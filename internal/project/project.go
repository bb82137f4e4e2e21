// Package project wires a traitgen.yml project together: configuration,
// asset discovery, the trait catalog, the compiled rules and the generator.
package project

import (
	"context"
	"fmt"
	"os"

	"github.com/dusk-indust/traitgen/internal/assets"
	"github.com/dusk-indust/traitgen/internal/catalog"
	"github.com/dusk-indust/traitgen/internal/config"
	"github.com/dusk-indust/traitgen/internal/export"
	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/dusk-indust/traitgen/internal/orchestrator"
	"github.com/dusk-indust/traitgen/internal/rules"
	"github.com/dusk-indust/traitgen/internal/sampler"
	"github.com/dusk-indust/traitgen/internal/status"
	"go.uber.org/zap"
)

// LoadConfig reads the project file at path, which may be a traitgen.yml or
// the directory holding one, then applies environment overrides and
// defaults. A nil environ reads the process environment.
func LoadConfig(path string, environ map[string]string) (*config.ProjectConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	var cfg *config.ProjectConfig
	if info.IsDir() {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(environ); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Project is an opened project. The catalog may be invalid; callers check
// Validation before generating.
type Project struct {
	Config  *config.ProjectConfig
	Catalog *catalog.Catalog
	Rules   *rules.RuleSet

	logger *zap.Logger
}

// Open compiles the rules, discovers assets in processing order and builds
// the catalog. Rule and discovery errors are returned; catalog validation
// errors are kept on the catalog.
func Open(cfg *config.ProjectConfig, logger *zap.Logger) (*Project, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rs, err := rules.Compile(cfg.Rules)
	if err != nil {
		return nil, err
	}

	roots, err := assets.Discover(cfg.AssetsDir, rs.Order)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(cfg.FramesRequired)
	res := cat.Build(roots)
	for _, w := range res.Warnings {
		logger.Warn("catalog warning", zap.String("warning", w))
	}
	if !res.IsValid {
		logger.Error("catalog invalid", zap.Strings("errors", res.ErrorMessages()))
	} else {
		logger.Debug("catalog built",
			zap.Int("categories", res.Stats.Categories),
			zap.Int("options", res.Stats.Options),
			zap.Int("frames", res.Stats.Frames))
	}

	return &Project{Config: cfg, Catalog: cat, Rules: rs, logger: logger}, nil
}

// Validate loads the rules into store, lints them and pairs the findings
// with the catalog validation result.
func (p *Project) Validate(ctx context.Context, store graph.Store) (status.ValidationReport, error) {
	if err := graph.BuildRuleGraph(ctx, store, p.Rules); err != nil {
		return status.ValidationReport{}, err
	}
	findings, err := graph.Lint(ctx, store)
	if err != nil {
		return status.ValidationReport{}, err
	}
	findings = append(findings, p.OrderFindings()...)
	for _, f := range findings {
		p.logger.Warn("rule finding", zap.String("kind", string(f.Kind)), zap.String("message", f.Message))
	}
	return status.NewValidationReport(p.Catalog.Validation(), findings), nil
}

// OrderFindings reports forced pairings that cannot fire under the
// processing order, resolving bare keys against the catalog.
func (p *Project) OrderFindings() []graph.Finding {
	byName := make(map[string][]string)
	for _, category := range p.Catalog.Categories() {
		opts, err := p.Catalog.Options(category)
		if err != nil {
			continue
		}
		for _, o := range opts {
			byName[o.Name] = append(byName[o.Name], category)
		}
	}
	return graph.LintForcedOrder(p.Rules, func(name string) []string { return byName[name] })
}

// Orchestrator returns a generator configured from the project. A nil
// source uses sampler.Default.
func (p *Project) Orchestrator(src sampler.Source) *orchestrator.Orchestrator {
	return orchestrator.New(p.Catalog, p.Rules, orchestrator.Config{
		BatchWidth:        p.Config.BatchWidth,
		AttemptMultiplier: p.Config.AttemptMultiplier,
		Source:            src,
		Logger:            p.logger,
	})
}

// Generate runs one generation of count combinations. Count <= 0 uses the
// configured count.
func (p *Project) Generate(ctx context.Context, count int, src sampler.Source) (*orchestrator.Result, status.Report, error) {
	if count <= 0 {
		count = p.Config.Count
	}
	o := p.Orchestrator(src)
	defer o.Close()

	res, err := o.Generate(ctx, count)
	if res == nil {
		return nil, status.Report{}, err
	}
	report := status.NewReport(res)
	p.logger.Info("generation finished",
		zap.String("run_id", res.RunID),
		zap.Int("requested", report.Requested),
		zap.Int("generated", report.Generated),
		zap.Int("attempts", report.Attempts))
	return res, report, err
}

// Export writes res to the project's output directory and returns the file
// path.
func (p *Project) Export(res *orchestrator.Result) (string, error) {
	path := export.Path(p.Config.OutputDir, res.RunID)
	exp := export.BuildExport(res.RunID, status.NewReport(res), res.Combinations)
	if err := export.WriteJSON(path, exp); err != nil {
		return "", err
	}
	return path, nil
}

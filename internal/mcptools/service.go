package mcptools

import (
	"context"
	"fmt"

	"github.com/dusk-indust/traitgen/internal/export"
	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/dusk-indust/traitgen/internal/project"
	"github.com/dusk-indust/traitgen/internal/sampler"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StoreFactory opens a fresh rule graph store for one tool call.
type StoreFactory func() (graph.Store, error)

// MemStoreFactory returns in-memory stores.
func MemStoreFactory() (graph.Store, error) {
	return graph.NewMemStore(), nil
}

// Service holds the opened project used by MCP tool handlers.
type Service struct {
	project  *project.Project
	newStore StoreFactory
	source   sampler.Source
}

// NewService creates a Service for p. A nil factory uses MemStoreFactory.
func NewService(p *project.Project, newStore StoreFactory) *Service {
	if newStore == nil {
		newStore = MemStoreFactory
	}
	return &Service{project: p, newStore: newStore}
}

// SetSource overrides the sampler source, mainly for deterministic tests.
func (s *Service) SetSource(src sampler.Source) {
	s.source = src
}

// GenerateCombinations runs one generation and returns the report and the
// ranked combinations.
func (s *Service) GenerateCombinations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	if input.Count < 0 {
		return nil, GenerateOutput{}, fmt.Errorf("count must not be negative")
	}

	res, report, err := s.project.Generate(ctx, input.Count, s.source)
	if err != nil {
		return nil, GenerateOutput{}, fmt.Errorf("generate: %w", err)
	}

	out := GenerateOutput{
		Report:       report,
		Combinations: export.BuildExport(res.RunID, report, res.Combinations).Combinations,
	}
	if input.Export {
		path, err := s.project.Export(res)
		if err != nil {
			return nil, GenerateOutput{}, fmt.Errorf("export: %w", err)
		}
		out.ExportPath = path
	}
	return nil, out, nil
}

// ValidateCatalog reports catalog validation errors, warnings and stats
// together with rule lint findings.
func (s *Service) ValidateCatalog(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	store, err := s.newStore()
	if err != nil {
		return nil, ValidateOutput{}, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	report, err := s.project.Validate(ctx, store)
	if err != nil {
		return nil, ValidateOutput{}, err
	}
	return nil, ValidateOutput{Report: report}, nil
}

// DescribeRules builds the rule graph and returns it as a Mermaid diagram,
// optionally with the chains reachable from one option.
func (s *Service) DescribeRules(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DescribeRulesInput,
) (*mcp.CallToolResult, DescribeRulesOutput, error) {
	store, err := s.newStore()
	if err != nil {
		return nil, DescribeRulesOutput{}, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := graph.BuildRuleGraph(ctx, store, s.project.Rules); err != nil {
		return nil, DescribeRulesOutput{}, err
	}

	diagram, err := export.GenerateMermaid(ctx, store)
	if err != nil {
		return nil, DescribeRulesOutput{}, fmt.Errorf("mermaid: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, DescribeRulesOutput{}, fmt.Errorf("stats: %w", err)
	}
	findings, err := graph.Lint(ctx, store)
	if err != nil {
		return nil, DescribeRulesOutput{}, err
	}
	findings = append(findings, s.project.OrderFindings()...)

	out := DescribeRulesOutput{
		Mermaid:  diagram,
		Stats:    *stats,
		Chains:   []graph.DependencyChain{},
		Findings: findings,
	}
	if out.Findings == nil {
		out.Findings = []graph.Finding{}
	}

	if input.OptionID != "" {
		dir := graph.DirectionDownstream
		if input.Direction != "" {
			dir = graph.Direction(input.Direction)
		}
		if dir != graph.DirectionDownstream && dir != graph.DirectionUpstream {
			return nil, DescribeRulesOutput{}, fmt.Errorf("direction must be upstream or downstream, got %q", input.Direction)
		}
		depth := input.MaxDepth
		if depth <= 0 {
			depth = 5
		}
		chains, err := store.GetDependencies(ctx, input.OptionID, dir, depth)
		if err != nil {
			return nil, DescribeRulesOutput{}, fmt.Errorf("get dependencies: %w", err)
		}
		if chains != nil {
			out.Chains = chains
		}
	}
	return nil, out, nil
}

package mcptools

import (
	"github.com/dusk-indust/traitgen/internal/export"
	"github.com/dusk-indust/traitgen/internal/graph"
	"github.com/dusk-indust/traitgen/internal/status"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// GenerateInput is the input for the generate_combinations MCP tool.
type GenerateInput struct {
	Count  int  `json:"count,omitempty" jsonschema:"number of unique combinations to generate (default: the project count)"`
	Export bool `json:"export,omitempty" jsonschema:"also write the collection JSON to the project output directory"`
}

// GenerateOutput is the result of the generate_combinations MCP tool.
type GenerateOutput struct {
	Report       status.Report              `json:"report"`
	Combinations []export.CombinationExport `json:"combinations"`
	ExportPath   string                     `json:"exportPath,omitempty"`
}

// ValidateInput is the input for the validate_catalog MCP tool.
type ValidateInput struct{}

// ValidateOutput is the result of the validate_catalog MCP tool.
type ValidateOutput struct {
	Report status.ValidationReport `json:"report"`
}

// DescribeRulesInput is the input for the describe_rules MCP tool.
type DescribeRulesInput struct {
	OptionID  string `json:"optionId,omitempty" jsonschema:"rule key such as Hat:Crown; when set, forced and dependent chains from it are returned"`
	Direction string `json:"direction,omitempty" jsonschema:"downstream (what it pulls in) or upstream (what pulls it in). Default: downstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// DescribeRulesOutput is the result of the describe_rules MCP tool.
type DescribeRulesOutput struct {
	Mermaid  string                  `json:"mermaid"`
	Stats    graph.GraphStats        `json:"stats"`
	Chains   []graph.DependencyChain `json:"chains"`
	Findings []graph.Finding         `json:"findings"`
}

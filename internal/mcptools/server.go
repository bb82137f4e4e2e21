package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewTraitgenMCPServer creates an MCP server with the generation, validation
// and rule description tools registered.
func NewTraitgenMCPServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "traitgen",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_combinations",
		Description: "Generate unique trait combinations from the project catalog under its rule table. Returns a run report and every combination with its rarity rank and percentile.",
	}, svc.GenerateCombinations)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_catalog",
		Description: "Validate the asset catalog (weights, frames, structure) and lint the rule table for cycles and contradictions. Returns errors, warnings and catalog statistics.",
	}, svc.ValidateCatalog)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_rules",
		Description: "Describe the rule table as a Mermaid diagram. Optionally returns the forced and dependent chains reachable from one option.",
	}, svc.DescribeRules)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts an HTTP server exposing the MCP tools over the streamable
// HTTP transport.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

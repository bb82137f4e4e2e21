package main

import (
	"os"
	"os/signal"

	"github.com/dusk-indust/traitgen/internal/mcptools"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveAddr string
	serveKuzu string
)

// serveMCPCmd exposes the project as MCP tools.
var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve generation, validation and rule tools over MCP",
	Long: `Runs an MCP server for the project. Without --addr the server speaks
over stdio; with --addr it serves the streamable HTTP transport.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := openProject(nil)
		if err != nil {
			return err
		}

		svc := mcptools.NewService(p, storeFactory(serveKuzu))
		server := mcptools.NewTraitgenMCPServer(svc)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if serveAddr == "" {
			logger.Info("serving MCP on stdio")
			return mcptools.RunStdio(ctx, server)
		}
		logger.Info("serving MCP over HTTP", zap.String("addr", serveAddr))
		return mcptools.RunHTTP(ctx, server, serveAddr)
	},
}

func init() {
	serveMCPCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address for the HTTP transport (e.g. :8080)")
	serveMCPCmd.Flags().StringVar(&serveKuzu, "kuzu", "", "KuzuDB path for rule graphs (cgo builds only)")
}

package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quizrag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the ingest_transcript, scope_status and generate_quiz
tools, and the archived quizzes as resources.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Prometheus metrics on /metrics

Examples:
  # Stdio mode (default, for Claude Desktop)
  quizrag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  quizrag mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "quizrag": {
        "command": "/path/to/quizrag",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("no-metrics", false, "do not serve /metrics in HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	noMetrics, err := cmd.Flags().GetBool("no-metrics")
	if err != nil {
		return fmt.Errorf("getting no-metrics flag: %w", err)
	}

	p, err := loadPipeline(cmd.Context())
	if err != nil {
		return err
	}
	if p.Quiz == nil || p.Ingestion == nil {
		return errors.New("pipeline services not configured")
	}

	ports := &mcp.Ports{
		Ingestion: p.Ingestion,
		Quiz:      p.Quiz,
		Archive:   p.Archive,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		var metrics http.Handler
		if !noMetrics {
			metrics = p.Metrics
		}
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr, metrics)
	}

	return server.Run(cmd.Context())
}

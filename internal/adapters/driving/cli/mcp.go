package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragtube/ragtube-cli/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can list videos,
retrieve passages and ask questions.

By default the server communicates over stdio using JSON-RPC. Use --http to
serve the streamable HTTP transport instead.

Examples:
  # Stdio mode (for desktop assistants)
  ragtube mcp

  # HTTP mode (for MCP Inspector, remote access)
  ragtube mcp --http :8080

Assistant configuration:
  {
    "mcpServers": {
      "ragtube": {
        "command": "/path/to/ragtube",
        "args": ["mcp"]
      }
    }
  }`,
	Args:        cobra.NoArgs,
	Annotations: needsAI,
	RunE:        runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "HTTP listen address (empty = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Videos:    videoService,
		Retrieval: retrievalService,
		Query:     queryService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}

	return server.Run(cmd.Context())
}

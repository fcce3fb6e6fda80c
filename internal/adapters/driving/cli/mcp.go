package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opscore-io/netquery/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
	Long:  `Expose the CMDB query pipeline to MCP clients.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server exposing cmdb_query, cmdb_sql and cmdb_links
tools plus the netquery://topology resource.

With no --port the server speaks over stdio, which is what editor and
agent integrations expect. With --port it serves streamable HTTP on
localhost.`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVar(&mcpPort, "port", 0, "HTTP port (0 serves over stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Query:    queryService,
		Topology: topologyService,
		Events:   events,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if mcpPort > 0 {
		addr := fmt.Sprintf("localhost:%d", mcpPort)
		cmd.Printf("serving MCP over HTTP on %s\n", addr)
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}

// ABOUTME: MCP server command implementation for xbm.
// ABOUTME: Starts the MCP server in stdio mode for AI agent integration.
package main

import (
	"github.com/spf13/cobra"

	"github.com/2389-research/xbm/internal/bookmarks"
	mcppkg "github.com/2389-research/xbm/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio, allowing AI agents to list, add,
and remove your X bookmarks through a standardized protocol.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	store, err := newIndexStore()
	if err != nil {
		return err
	}

	resolver := bookmarks.NewResolver(newSyncer(client), client, store)
	server, err := mcppkg.NewServer(client, resolver)
	if err != nil {
		return err
	}

	return server.Serve(cmd.Context())
}

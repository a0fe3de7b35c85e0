// ABOUTME: MCP server command implementation for quill.
// ABOUTME: Starts the MCP server in stdio mode for AI agent integration.
package main

import (
	"github.com/spf13/cobra"

	"github.com/2389-research/quill/internal/blog"
	mcppkg "github.com/2389-research/quill/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio, allowing AI agents to read posts
and, after logging in, create, update, and delete their own posts.`,
	RunE: runMCP,
}

var mcpEphemeral bool

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVar(&mcpEphemeral, "ephemeral", false, "Keep the login in memory instead of the credential file")
}

func runMCP(cmd *cobra.Command, args []string) error {
	tokens := globalTokens
	if mcpEphemeral {
		tokens = blog.NewMemoryTokenStore("")
	}

	server, err := mcppkg.NewServer(globalClient, tokens, mcppkg.WithLogger(globalLogger))
	if err != nil {
		return err
	}

	return server.Serve(cmd.Context())
}

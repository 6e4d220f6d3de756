package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpgoserver "github.com/mark3labs/mcp-go/server"

	"github.com/trackline/trackline/internal/mcpserver"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  search             free-text search across work-item subtypes
  get_entity         fetch one work item with references resolved
  phase_transitions  legal workflow transitions out of a phase

A valid session must exist (run "trackline login" first); tool calls made
while logged out return MCP error responses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			svc := newService(logger)
			if err := svc.Initialize(ctx); err != nil {
				// Start anyway; tool calls report per-call errors.
				logger.Error("mcp: initializing service; tool calls may fail", "error", err)
			}

			srv := mcpserver.NewServer(svc, logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: trackline MCP server starting", "transport", "stdio")

			return mcpgoserver.ServeStdio(
				srv.MCPServer(),
				mcpgoserver.WithErrorLogger(errLogger),
			)
		},
	}

	return cmd
}

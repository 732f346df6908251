package main

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"waypoint/internal/logging"
	"waypoint/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resolve/rank/feedback tools over MCP stdio",
	Long: `Starts a Model Context Protocol server on stdio so editor agents can
resolve targets, rank candidates, and record verdicts directly. The
server shuts down when its parent process dies.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logging.New("serve")
		srv := mcp.NewServer(cfg)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		mcp.WatchParent(ctx, cancel)

		log.Info("mcp server starting", "transport", "stdio")
		return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
	},
}

package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joescharf/jules/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing Jules session tools",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

Tools exposed: jules_list_sessions, jules_get_session, jules_create_session,
jules_send_message, jules_approve_plan, jules_list_activities,
jules_list_sources.

Add to an MCP client config:
  {"command": "jules", "args": ["mcp"]}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return mcpserver.NewServer(apiClient).ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

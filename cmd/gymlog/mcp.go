// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/gymlog/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants to interact with your workout log through a
standardized protocol. The server communicates via stdin/stdout.

CONFIGURATION:

  {
    "mcpServers": {
      "gymlog": {
        "command": "gymlog",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  log_session          Record a workout session with exercises and sets
  list_sessions        List sessions, optionally within a date range
  get_session          Get a session with all exercises and sets
  delete_session       Delete a session and everything it contains
  previous_max_weight  Heaviest weight ever recorded for an exercise
  add_library_exercise Add a reusable exercise to the library
  list_library         List the library, optionally by body part
  search_library       Search the library by name substring
  mark_exercise_used   Stamp a library exercise as just used
  export_backup        Export the full store as a JSON backup

AVAILABLE RESOURCES:

  gymlog://recent    The 10 most recent sessions
  gymlog://library   The full exercise library`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := slog.New(slog.NewTextHandler(os.Stderr, nil))

		server, err := mcp.NewServer(repo)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			log.Info("shutting down")
			cancel()
		}()

		log.Info("mcp server starting", "transport", "stdio")
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// ABOUTME: Root Cobra command for gymlog CLI.
// ABOUTME: Handles storage lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/harperreed/gymlog/internal/config"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

var repo storage.Repository

var rootCmd = &cobra.Command{
	Use:   "gymlog",
	Short: "Personal workout log",
	Long: `Gymlog is a CLI tool for tracking workout sessions and a reusable
exercise library, stored locally in SQLite.

QUICK START:

  $ gymlog session list                      # Recent sessions, newest first
  $ gymlog session show <id>                 # Full session with sets
  $ gymlog session max "Bench Press"         # Heaviest weight ever logged
  $ gymlog library add "Bench Press" chest   # Add a library exercise
  $ gymlog library search bench              # Find exercises by name

BACKUP:

  $ gymlog export json -o backup.json        # Full backup
  $ gymlog import backup.json                # Atomic restore (replaces data)

MCP INTEGRATION:

  Run 'gymlog mcp' to start the Model Context Protocol server for use with
  MCP-compatible AI assistants:

  {
    "mcpServers": {
      "gymlog": { "command": "gymlog", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Sessions, exercises, sets, and the library live in a single SQLite file,
  by default ~/.local/share/gymlog/gymlog.db. Override data_dir in
  ~/.config/gymlog/config.json.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			return repo.Close()
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

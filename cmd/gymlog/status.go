// ABOUTME: CLI command reporting store health.
// ABOUTME: Shows schema version, table integrity, and record counts.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store health",
	Long: `Report on the local store: schema version, whether all required
tables exist, and how much is in the log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := repo.SchemaVersion()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		ok, err := repo.VerifySchemaIntegrity()
		if err != nil {
			return fmt.Errorf("failed to verify schema: %w", err)
		}

		sessions, err := repo.ListSessions()
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		library, err := repo.ListExercises()
		if err != nil {
			return fmt.Errorf("failed to list library: %w", err)
		}

		fmt.Printf("Schema version: %d\n", version)
		if ok {
			color.Green("Schema integrity: ok")
		} else {
			color.Red("Schema integrity: missing tables")
		}
		fmt.Printf("Sessions: %d\n", len(sessions))
		fmt.Printf("Library exercises: %d\n", len(library))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// ABOUTME: CLI commands for exporting and importing workout data.
// ABOUTME: Supports JSON and YAML export; import replaces the store atomically.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export workout data",
	Long: `Export the entire workout log in various formats.

FORMATS:

  json   Full JSON export (suitable for backup/restore)
  yaml   YAML export (human-readable)

EXAMPLES:

  gymlog export json                 # Export all data as JSON
  gymlog export json -o backup.json  # Save to file
  gymlog export yaml                 # Export as YAML`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error

		switch args[0] {
		case "json":
			data, err = repo.ExportJSON()
		case "yaml":
			data, err = repo.ExportYAML()
		default:
			return fmt.Errorf("unknown format: %s (use json or yaml)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import workout data from a JSON backup",
	Long: `Restore the workout log from a previously exported JSON backup.

Import replaces everything currently in the store. The replace is atomic: a
malformed or partially unreadable backup leaves the store exactly as it was.

EXAMPLES:

  gymlog import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		if err := repo.ImportJSON(data); err != nil {
			if errors.Is(err, storage.ErrInvalidFormat) {
				return fmt.Errorf("%s is not a gymlog backup: %w", args[0], err)
			}
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %s", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

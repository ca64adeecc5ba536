// ABOUTME: CLI commands for the reusable exercise library.
// ABOUTME: Supports add, list, search, rm, and used subcommands.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

var (
	libraryBodyPart string
	libraryVideoURL string
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Manage the exercise library",
	Long: `Manage the reusable exercise catalog.

Library entries are templates: a name, the body part they target, and an
optional reference video. Each (name, body part) pair is unique. Deleting a
library entry never changes past sessions; history keeps its own copy of the
exercise name.

BODY PARTS:

  chest, back, legs, shoulders, arms, abs, other

COMMANDS:

  add      Add a library exercise
  list     List the library, most recently used first
  search   Find exercises by name substring
  rm       Remove a library exercise
  used     Stamp an exercise as just used`,
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <name> <body part>",
	Short: "Add a library exercise",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, bodyPart := args[0], args[1]
		if !models.IsValidBodyPart(bodyPart) {
			return fmt.Errorf("unknown body part: %s (use chest, back, legs, shoulders, arms, abs, or other)", bodyPart)
		}

		e := models.NewExercise(name, models.BodyPart(bodyPart))
		if libraryVideoURL != "" {
			e.WithVideoURL(libraryVideoURL)
		}

		if err := repo.CreateExercise(e); err != nil {
			if errors.Is(err, storage.ErrConstraint) {
				return fmt.Errorf("%s (%s) is already in the library", name, bodyPart)
			}
			return fmt.Errorf("failed to add exercise: %w", err)
		}

		color.Green("✓ Added %s (%s) — ID %s", e.Name, e.BodyPart, e.ID.String()[:8])
		return nil
	},
}

var libraryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List library exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		var exercises []*models.Exercise
		var err error

		if libraryBodyPart != "" {
			if !models.IsValidBodyPart(libraryBodyPart) {
				return fmt.Errorf("unknown body part: %s", libraryBodyPart)
			}
			exercises, err = repo.ListExercisesByBodyPart(models.BodyPart(libraryBodyPart))
		} else {
			exercises, err = repo.ListExercises()
		}
		if err != nil {
			return fmt.Errorf("failed to list library: %w", err)
		}

		printExercises(exercises)
		return nil
	},
}

var librarySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find exercises by name substring",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		exercises, err := repo.SearchExercises(query)
		if err != nil {
			return fmt.Errorf("failed to search library: %w", err)
		}

		printExercises(exercises)
		return nil
	},
}

var libraryRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Remove a library exercise",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid exercise id: %s", args[0])
		}

		if err := repo.DeleteExercise(id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no library exercise with id %s", args[0])
			}
			return fmt.Errorf("failed to delete exercise: %w", err)
		}

		color.Green("✓ Removed %s", args[0])
		return nil
	},
}

var libraryUsedCmd = &cobra.Command{
	Use:   "used <name>",
	Short: "Stamp an exercise as just used",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repo.MarkExerciseUsed(args[0]); err != nil {
			return fmt.Errorf("failed to mark exercise used: %w", err)
		}
		color.Green("✓ Marked %q as used", args[0])
		return nil
	},
}

func printExercises(exercises []*models.Exercise) {
	if len(exercises) == 0 {
		fmt.Println("No exercises found.")
		return
	}

	faint := color.New(color.Faint)
	for _, e := range exercises {
		used := faint.Sprint("never used")
		if e.LastUsed != nil {
			used = faint.Sprintf("used %s", e.LastUsed.Format("2006-01-02"))
		}
		fmt.Printf("%s %-30s %-10s %s\n",
			faint.Sprint(e.ID.String()[:8]), e.Name, e.BodyPart, used)
	}
}

func init() {
	libraryAddCmd.Flags().StringVar(&libraryVideoURL, "video", "", "Reference video URL")
	libraryListCmd.Flags().StringVarP(&libraryBodyPart, "body-part", "b", "", "Filter by body part")

	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(libraryRmCmd)
	libraryCmd.AddCommand(libraryUsedCmd)
	rootCmd.AddCommand(libraryCmd)
}

// ABOUTME: CLI commands for browsing and managing workout sessions.
// ABOUTME: Supports list, show, delete, and max subcommands.
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

var (
	sessionFrom string
	sessionTo   string
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"s"},
	Short:   "Manage workout sessions",
	Long: `Browse and manage recorded workout sessions.

A session is one visit to the gym: the date, optional elapsed time, and the
exercises performed with every set (weight and reps). Sessions are listed
most recent first.

COMMANDS:

  list     List sessions, optionally within a date range
  show     View a session with all exercises and sets
  delete   Remove a session and everything it contains
  max      Heaviest weight ever logged for an exercise name`,
}

var sessionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List workout sessions",
	Long: `List workout sessions, most recent date first.

EXAMPLES:

  gymlog session list                                # Everything
  gymlog session list --from 2025-11-01              # Since November
  gymlog session list --from 2025-11-01 --to 2025-11-30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := listSessionsInRange()
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, s := range sessions {
			total := ""
			if s.TotalTime != nil {
				total = faint.Sprintf(" (%dm%02ds)", *s.TotalTime/60, *s.TotalTime%60)
			}
			fmt.Printf("%s %s %d exercises%s\n",
				faint.Sprint(s.ID.String()[:8]),
				s.Date.Format("2006-01-02"),
				len(s.Exercises),
				total)
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "View a session with all exercises and sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id: %s", args[0])
		}

		s, err := repo.GetSession(id)
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		if s == nil {
			return fmt.Errorf("no session with id %s", args[0])
		}

		bold := color.New(color.Bold)
		faint := color.New(color.Faint)

		bold.Printf("Session %s\n", s.Date.Format("2006-01-02"))
		if s.TotalTime != nil {
			fmt.Printf("Duration: %dm%02ds\n", *s.TotalTime/60, *s.TotalTime%60)
		}
		for _, e := range s.Exercises {
			max := ""
			if e.MaxWeight != nil {
				max = faint.Sprintf(" (max %.1f kg)", *e.MaxWeight)
			}
			fmt.Printf("\n%s [%s]%s\n", e.ExerciseName, e.BodyPart, max)
			for _, st := range e.Sets {
				fmt.Printf("  %.1f kg x %d\n", st.Weight, st.Reps)
			}
		}
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session and everything it contains",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id: %s", args[0])
		}

		if err := repo.DeleteSession(id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no session with id %s", args[0])
			}
			return fmt.Errorf("failed to delete session: %w", err)
		}

		color.Green("✓ Deleted session %s", args[0])
		return nil
	},
}

var sessionMaxCmd = &cobra.Command{
	Use:   "max <exercise name>",
	Short: "Heaviest weight ever logged for an exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		max, err := repo.PreviousMaxWeight(args[0])
		if err != nil {
			return fmt.Errorf("failed to look up max weight: %w", err)
		}
		if max == nil {
			fmt.Printf("No history for %q.\n", args[0])
			return nil
		}
		fmt.Printf("%s: %.1f kg\n", args[0], *max)
		return nil
	},
}

func listSessionsInRange() ([]*models.WorkoutSession, error) {
	if sessionFrom == "" && sessionTo == "" {
		return repo.ListSessions()
	}

	start := time.Time{}
	end := time.Now().AddDate(100, 0, 0)
	if sessionFrom != "" {
		t, err := time.Parse("2006-01-02", sessionFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", sessionFrom)
		}
		start = t
	}
	if sessionTo != "" {
		t, err := time.Parse("2006-01-02", sessionTo)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", sessionTo)
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	return repo.ListSessionsByDateRange(start, end)
}

func init() {
	sessionListCmd.Flags().StringVar(&sessionFrom, "from", "", "Start date (inclusive, YYYY-MM-DD)")
	sessionListCmd.Flags().StringVar(&sessionTo, "to", "", "End date (inclusive, YYYY-MM-DD)")

	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	sessionCmd.AddCommand(sessionMaxCmd)
	rootCmd.AddCommand(sessionCmd)
}

// ABOUTME: MCP tool implementations for the workout log.
// ABOUTME: Exposes session, library, and backup operations over the Repository.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// log_session
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_session",
		Description: "Record a finished workout session with its exercises and sets",
	}, s.handleLogSession)

	// list_sessions
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_sessions",
		Description: "List workout sessions, most recent first, optionally within a date range",
	}, s.handleListSessions)

	// get_session
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_session",
		Description: "Get a workout session with all exercises and sets",
	}, s.handleGetSession)

	// delete_session
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a workout session and everything it contains",
	}, s.handleDeleteSession)

	// previous_max_weight
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "previous_max_weight",
		Description: "Get the heaviest weight ever recorded for a named exercise",
	}, s.handlePreviousMax)

	// add_library_exercise
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_library_exercise",
		Description: "Add a reusable exercise to the library",
	}, s.handleAddLibraryExercise)

	// list_library
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_library",
		Description: "List library exercises, most recently used first, optionally by body part",
	}, s.handleListLibrary)

	// search_library
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_library",
		Description: "Search library exercises by name substring",
	}, s.handleSearchLibrary)

	// mark_exercise_used
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "mark_exercise_used",
		Description: "Stamp a library exercise as just used",
	}, s.handleMarkUsed)

	// export_backup
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "export_backup",
		Description: "Export the entire workout log as a JSON backup document",
	}, s.handleExportBackup)
}

// Tool input/output types

type setInput struct {
	Weight float64 `json:"weight" jsonschema:"Weight lifted in kg (0 for bodyweight)"`
	Reps   int     `json:"reps" jsonschema:"Repetitions performed (at least 1)"`
}

type exerciseInput struct {
	Name     string     `json:"name" jsonschema:"Exercise name"`
	BodyPart string     `json:"body_part" jsonschema:"Body part (chest, back, legs, shoulders, arms, abs, other)"`
	Sets     []setInput `json:"sets" jsonschema:"Sets performed in order"`
}

type logSessionInput struct {
	Date      string          `json:"date,omitempty" jsonschema:"Session date (ISO 8601), defaults to now"`
	TotalTime int             `json:"total_time,omitempty" jsonschema:"Elapsed workout time in seconds"`
	Exercises []exerciseInput `json:"exercises" jsonschema:"Exercises performed in order"`
}

type sessionOutput struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

type listSessionsInput struct {
	From string `json:"from,omitempty" jsonschema:"Start date (inclusive, ISO 8601)"`
	To   string `json:"to,omitempty" jsonschema:"End date (inclusive, ISO 8601)"`
}

type sessionIDInput struct {
	ID string `json:"id" jsonschema:"Session ID"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type previousMaxInput struct {
	Name string `json:"name" jsonschema:"Exercise name (case-insensitive)"`
}

type addLibraryInput struct {
	Name     string `json:"name" jsonschema:"Exercise name (1-100 characters)"`
	BodyPart string `json:"body_part" jsonschema:"Body part (chest, back, legs, shoulders, arms, abs, other)"`
	VideoURL string `json:"video_url,omitempty" jsonschema:"Optional reference video URL"`
}

type listLibraryInput struct {
	BodyPart string `json:"body_part,omitempty" jsonschema:"Filter by body part"`
}

type searchLibraryInput struct {
	Query string `json:"query,omitempty" jsonschema:"Name substring to match (empty returns everything)"`
}

type markUsedInput struct {
	Name string `json:"name" jsonschema:"Exercise name"`
}

// Tool handlers

func (s *Server) handleLogSession(ctx context.Context, req *mcp.CallToolRequest, input logSessionInput) (*mcp.CallToolResult, sessionOutput, error) {
	date := time.Now()
	if input.Date != "" {
		t, err := parseDate(input.Date)
		if err != nil {
			return nil, sessionOutput{}, fmt.Errorf("invalid date: %s", input.Date)
		}
		date = t
	}

	session := models.NewWorkoutSession(date)
	if input.TotalTime > 0 {
		session.WithTotalTime(input.TotalTime)
	}
	for _, ex := range input.Exercises {
		if !models.IsValidBodyPart(ex.BodyPart) {
			return nil, sessionOutput{}, fmt.Errorf("unknown body part: %s", ex.BodyPart)
		}
		e := models.NewWorkoutExercise(ex.Name, models.BodyPart(ex.BodyPart))
		for _, st := range ex.Sets {
			e.AddSet(st.Weight, st.Reps)
		}
		session.AddExercise(*e)
	}

	if err := s.repo.CreateSession(session); err != nil {
		return nil, sessionOutput{}, fmt.Errorf("failed to create session: %w", err)
	}

	for _, ex := range input.Exercises {
		_ = s.repo.MarkExerciseUsed(ex.Name)
	}

	return nil, sessionOutput{
		ID:      session.ID.String(),
		Date:    session.Date.Format("2006-01-02"),
		Message: fmt.Sprintf("Logged session with %d exercises (ID: %s)", len(session.Exercises), session.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListSessions(ctx context.Context, req *mcp.CallToolRequest, input listSessionsInput) (*mcp.CallToolResult, any, error) {
	var sessions []*models.WorkoutSession
	var err error

	if input.From != "" || input.To != "" {
		from, to, perr := parseRange(input.From, input.To)
		if perr != nil {
			return nil, nil, perr
		}
		sessions, err = s.repo.ListSessionsByDateRange(from, to)
	} else {
		sessions, err = s.repo.ListSessions()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		return nil, map[string]interface{}{"message": "No sessions found."}, nil
	}
	return nil, sessions, nil
}

func (s *Server) handleGetSession(ctx context.Context, req *mcp.CallToolRequest, input sessionIDInput) (*mcp.CallToolResult, any, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid session id: %s", input.ID)
	}

	session, err := s.repo.GetSession(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, map[string]interface{}{"message": "Session not found."}, nil
	}
	return nil, session, nil
}

func (s *Server) handleDeleteSession(ctx context.Context, req *mcp.CallToolRequest, input sessionIDInput) (*mcp.CallToolResult, simpleOutput, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("invalid session id: %s", input.ID)
	}

	if err := s.repo.DeleteSession(id); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete session: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted session: %s", input.ID),
	}, nil
}

func (s *Server) handlePreviousMax(ctx context.Context, req *mcp.CallToolRequest, input previousMaxInput) (*mcp.CallToolResult, any, error) {
	max, err := s.repo.PreviousMaxWeight(input.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up max weight: %w", err)
	}

	if max == nil {
		return nil, map[string]interface{}{
			"message": fmt.Sprintf("No history for %q.", input.Name),
		}, nil
	}
	return nil, map[string]interface{}{
		"exercise":   input.Name,
		"max_weight": *max,
	}, nil
}

func (s *Server) handleAddLibraryExercise(ctx context.Context, req *mcp.CallToolRequest, input addLibraryInput) (*mcp.CallToolResult, simpleOutput, error) {
	if !models.IsValidBodyPart(input.BodyPart) {
		return nil, simpleOutput{}, fmt.Errorf("unknown body part: %s", input.BodyPart)
	}

	e := models.NewExercise(input.Name, models.BodyPart(input.BodyPart))
	if input.VideoURL != "" {
		e.WithVideoURL(input.VideoURL)
	}

	if err := s.repo.CreateExercise(e); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to add exercise: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Added %s (%s) to library (ID: %s)", e.Name, e.BodyPart, e.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListLibrary(ctx context.Context, req *mcp.CallToolRequest, input listLibraryInput) (*mcp.CallToolResult, any, error) {
	var exercises []*models.Exercise
	var err error

	if input.BodyPart != "" {
		if !models.IsValidBodyPart(input.BodyPart) {
			return nil, nil, fmt.Errorf("unknown body part: %s", input.BodyPart)
		}
		exercises, err = s.repo.ListExercisesByBodyPart(models.BodyPart(input.BodyPart))
	} else {
		exercises, err = s.repo.ListExercises()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list library: %w", err)
	}

	if len(exercises) == 0 {
		return nil, map[string]interface{}{"message": "Library is empty."}, nil
	}
	return nil, exercises, nil
}

func (s *Server) handleSearchLibrary(ctx context.Context, req *mcp.CallToolRequest, input searchLibraryInput) (*mcp.CallToolResult, any, error) {
	exercises, err := s.repo.SearchExercises(input.Query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search library: %w", err)
	}

	if len(exercises) == 0 {
		return nil, map[string]interface{}{"message": "No matches."}, nil
	}
	return nil, exercises, nil
}

func (s *Server) handleMarkUsed(ctx context.Context, req *mcp.CallToolRequest, input markUsedInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.MarkExerciseUsed(input.Name); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to mark exercise used: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Marked %q as used", input.Name),
	}, nil
}

func (s *Server) handleExportBackup(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, simpleOutput, error) {
	data, err := s.repo.ExportJSON()
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to export: %w", err)
	}
	return nil, simpleOutput{Message: string(data)}, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
	}
	return t, err
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Now().AddDate(100, 0, 0)

	if from != "" {
		t, err := parseDate(from)
		if err != nil {
			return start, end, fmt.Errorf("invalid from date: %s", from)
		}
		start = t
	}
	if to != "" {
		t, err := parseDate(to)
		if err != nil {
			return start, end, fmt.Errorf("invalid to date: %s", to)
		}
		// A bare day bound includes the whole day.
		if len(to) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		end = t
	}
	return start, end, nil
}

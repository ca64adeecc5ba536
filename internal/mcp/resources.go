// ABOUTME: MCP resource implementations for the workout log.
// ABOUTME: Provides gymlog://recent and gymlog://library resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// gymlog://recent - latest sessions with full detail
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "gymlog://recent",
		Name:        "Recent Workout Sessions",
		Description: "The 10 most recent workout sessions with exercises and sets",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// gymlog://library - the full exercise library
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "gymlog://library",
		Name:        "Exercise Library",
		Description: "All library exercises, most recently used first",
		MIMEType:    "application/json",
	}, s.handleLibraryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	sessions, err := s.repo.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) > 10 {
		sessions = sessions[:10]
	}

	result := map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "gymlog://recent",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleLibraryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	exercises, err := s.repo.ListExercises()
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}

	result := map[string]interface{}{
		"exercises": exercises,
		"count":     len(exercises),
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "gymlog://library",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

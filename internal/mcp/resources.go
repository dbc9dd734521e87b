// ABOUTME: MCP resource implementations for the anchor tracker.
// ABOUTME: Provides anchor://today with the day view and progress.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/anchor/internal/history"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const todayURI = "anchor://today"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today",
		Description: "Today's activities, doses, extra medications, and progress",
		MIMEType:    "application/json",
	}, s.handleTodayResource)
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	date, err := s.loadedDay(ctx, "")
	if err != nil {
		return nil, err
	}
	day := s.tracker.Day(date)

	result := map[string]any{
		"date":     date,
		"view":     history.Build(day, s.tracker.Activities(), s.meds.Current()),
		"progress": history.ComputeProgress(s.tracker.Activities(), day.Entries),
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      todayURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// ABOUTME: MCP server setup for the anchor tracker.
// ABOUTME: Wraps the MCP server around the tracker, medication config, and history.
package mcp

import (
	"context"

	"github.com/harperreed/anchor/internal/history"
	"github.com/harperreed/anchor/internal/logger"
	"github.com/harperreed/anchor/internal/medconfig"
	"github.com/harperreed/anchor/internal/models"
	"github.com/harperreed/anchor/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with tracker access.
type Server struct {
	mcpServer *mcp.Server
	tracker   *tracker.Tracker
	meds      *medconfig.Provider
	history   *history.Reconstructor

	unsubscribe func()
}

// NewServer creates a new MCP server over the given tracker and medication config.
func NewServer(tr *tracker.Tracker, meds *medconfig.Provider) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "anchor",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			// The SDK tracks subscribed sessions itself.
			SubscribeHandler:   func(context.Context, *mcp.SubscribeRequest) error { return nil },
			UnsubscribeHandler: func(context.Context, *mcp.UnsubscribeRequest) error { return nil },
		},
	)

	s := &Server{
		mcpServer: mcpServer,
		tracker:   tr,
		meds:      meds,
		history: &history.Reconstructor{
			Source:      tr,
			Activities:  tr.Activities(),
			Medications: meds,
		},
	}

	s.registerTools()
	s.registerResources()
	s.unsubscribe = meds.Subscribe(s.medicationsChanged)

	return s, nil
}

// medicationsChanged tells subscribed clients that the day view changed shape.
func (s *Server) medicationsChanged(models.MedicationConfig) {
	err := s.mcpServer.ResourceUpdated(context.Background(), &mcp.ResourceUpdatedNotificationParams{URI: todayURI})
	if err != nil {
		logger.Warn("resource update notification failed", "uri", todayURI, "error", err)
	}
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	defer s.Close()
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Close stops listening for medication config changes.
func (s *Server) Close() {
	s.unsubscribe()
}

// ABOUTME: CLI commands for the MCP server and the HTTP API.
// ABOUTME: Both run until SIGINT or SIGTERM and flush pending writes on exit.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harperreed/anchor/internal/api"
	"github.com/harperreed/anchor/internal/mcp"
	"github.com/spf13/cobra"
)

var serveAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and works against the same store
as the CLI (remote when configured, local otherwise).

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "anchor": {
        "command": "anchor",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  get_day             Answers, doses, extras, and progress for a day
  set_entry           Answer one daily question
  toggle_dose         Mark a standing medication dose taken or not
  update_dose_time    Change when a dose was taken
  update_dosage       Record the dosage actually taken
  set_evening_time    Record when evening medications were taken
  add_extra_med       Log a one-off medication
  remove_extra_med    Remove a one-off medication
  get_history         Reconstructed day with gaps marked
  get_calendar        Which days of a month have data
  list_activities     Questions and standing medications

AVAILABLE RESOURCES:

  anchor://today      Today's view and progress`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(tr, meds)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.Serve(ctx)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP JSON API",
	Long: `Serve the tracker as a JSON API for a browser or phone client.

ROUTES:

  GET    /healthz
  GET    /api/activities
  GET    /api/medications
  GET    /api/days/:date
  DELETE /api/days/:date
  PUT    /api/days/:date/entries/:activity         {"value": ...}
  POST   /api/days/:date/doses/:med/:dose/toggle
  PUT    /api/days/:date/doses/:med/:dose/time     {"time": "08:30"}
  PUT    /api/days/:date/doses/:med/:dose/dosage   {"value": 900}
  PUT    /api/days/:date/evening                   {"time": "21:00"}
  POST   /api/days/:date/extras                    {"name": "...", "dosage": "..."}
  DELETE /api/days/:date/extras/:id
  GET    /api/history/:date
  GET    /api/calendar/:month                      (YYYY-MM)

:date accepts YYYY-MM-DD, today, or yesterday.

EXAMPLES:

  anchor serve
  anchor serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return api.Serve(ctx, serveAddr, api.NewHandler(tr, meds))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")

	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)
}

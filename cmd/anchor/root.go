// ABOUTME: Root Cobra command for the anchor CLI.
// ABOUTME: Opens config, logging, storage, and the tracker in PersistentPreRunE.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/anchor/internal/config"
	"github.com/harperreed/anchor/internal/logger"
	"github.com/harperreed/anchor/internal/medconfig"
	"github.com/harperreed/anchor/internal/remote"
	"github.com/harperreed/anchor/internal/storage"
	"github.com/harperreed/anchor/internal/tracker"
	"github.com/spf13/cobra"
)

// skipStartup marks commands that manage their own storage or need none.
const skipStartup = "anchor/skip-startup"

var (
	cfg     *config.Config
	kvStore storage.KV
	meds    *medconfig.Provider
	tr      *tracker.Tracker

	// remoteStore is nil in local-only mode
	remoteStore remote.Store
)

var rootCmd = &cobra.Command{
	Use:   "anchor",
	Short: "Daily mood, habit, and medication tracker",
	Long: `Anchor tracks how each day went: a short list of daily questions
(sleep, exercise, mood, paranoia, ...) plus which medications were taken
and when.

DAILY USE:

  $ anchor today                       # What's logged today, and what's left
  $ anchor log mood -2                 # Answer a question
  $ anchor log stretch yes
  $ anchor take propranolol 1          # Toggle a daytime dose
  $ anchor evening                     # Evening meds taken now
  $ anchor extra add Ibuprofen 200mg   # One-off medication

LOOKING BACK:

  $ anchor history                     # Yesterday, with gaps marked
  $ anchor history 2025-01-02
  $ anchor calendar 2025-01            # Which days have data

STORAGE:

  Without a remote store, days are kept in a local SQLite database at
  ~/.local/share/anchor/anchor.db (see "backend" in config for badger,
  charm, or redis). Set ANCHOR_REMOTE_URL and ANCHOR_REMOTE_KEY (or a
  .env file) to use a hosted Postgres store of record instead.

INTEGRATIONS:

  anchor mcp     Model Context Protocol server over stdio
  anchor serve   JSON HTTP API for a browser or phone client`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsStartup(cmd) {
			return nil
		}
		return startup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdown()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func skipsStartup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "completion":
		return true
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipStartup] == "true" {
			return true
		}
	}
	return false
}

func startup() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	kvStore, err = cfg.OpenStorage()
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
	}

	meds = medconfig.New(kvStore)
	if _, err := meds.Load(); err != nil {
		return fmt.Errorf("failed to load medication config: %w", err)
	}

	opts := tracker.Options{
		UserID: cfg.GetUserID(),
		Local:  storage.NewDays(kvStore),
		OnRemoteError: func(m tracker.Mutation, err error) {
			fmt.Fprintln(os.Stderr, color.YellowString("⚠ %s did not reach the remote store: %v", m, err))
		},
	}
	if cfg.RemoteConfigured() {
		rs, err := cfg.OpenRemote()
		if err != nil {
			return fmt.Errorf("failed to open remote store: %w", err)
		}
		opts.Remote = rs
		remoteStore = rs
	}
	tr = tracker.New(opts)
	logger.Debug("cli started", "backend", cfg.GetBackend(), "remote", tr.IsRemote())
	return nil
}

// shutdown flushes pending remote writes and closes every store.
func shutdown() error {
	var errs []error
	if tr != nil {
		errs = append(errs, tr.Close())
		tr = nil
	}
	if kvStore != nil {
		errs = append(errs, kvStore.Close())
		kvStore = nil
	}
	meds = nil
	remoteStore = nil
	return errors.Join(errs...)
}

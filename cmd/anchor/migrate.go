// ABOUTME: CLI command for moving local data between storage backends.
// ABOUTME: Copies every blob, then optionally switches the configured backend.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/anchor/internal/config"
	"github.com/harperreed/anchor/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
	migrateSwitch bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy local data to another storage backend",
	Long: `Copy every locally stored day and the medication configuration from one
backend to another.

BACKENDS:

  sqlite   ~/.local/share/anchor/anchor.db (default)
  badger   ~/.local/share/anchor/badger
  charm    Charm KV, synced across devices
  redis    Redis at redis_addr (default localhost:6379)

USAGE:

  anchor migrate --to badger --dry-run   # Preview what would be copied
  anchor migrate --to badger --switch    # Copy, then use badger from now on

Existing keys in the destination are overwritten. A non-empty badger
directory is refused unless --force is given.

The remote store is not touched.`,
	Annotations: map[string]string{skipStartup: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		from := migrateFrom
		if from == "" {
			from = c.GetBackend()
		}
		if migrateTo == "" {
			return fmt.Errorf("--to is required")
		}
		if from == migrateTo {
			return fmt.Errorf("source and destination are both %s", from)
		}

		if migrateTo == config.BackendBadger && !migrateForce {
			dir := filepath.Join(c.GetDataDir(), "badger")
			nonEmpty, err := storage.IsDirNonEmpty(dir)
			if err != nil {
				return err
			}
			if nonEmpty {
				return fmt.Errorf("%s already has data (use --force to overwrite keys)", dir)
			}
		}

		src, err := openBackend(c, from)
		if err != nil {
			return err
		}
		defer src.Close()
		// a dry run never writes, so the destination stays unopened
		var dst storage.KV
		if !migrateDryRun {
			if dst, err = openBackend(c, migrateTo); err != nil {
				return err
			}
			defer dst.Close()
		}

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
		}
		summary, err := storage.MigrateData(src, dst, migrateDryRun)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		verb := "Copied"
		if migrateDryRun {
			verb = "Would copy"
		}
		color.Green("✓ %s %d key(s) from %s to %s", verb, summary.Total(), from, migrateTo)
		fmt.Printf("  Entries:       %d\n", summary.Entries)
		fmt.Printf("  Dose logs:     %d\n", summary.MedLogs)
		fmt.Printf("  Evening times: %d\n", summary.EveningTimes)
		fmt.Printf("  Extra meds:    %d\n", summary.ExtraMeds)
		fmt.Printf("  Config:        %d\n", summary.Config)
		if summary.Other > 0 {
			fmt.Printf("  Other:         %d\n", summary.Other)
		}

		if migrateSwitch && !migrateDryRun {
			c.Backend = migrateTo
			if err := c.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			color.Green("✓ Now using %s storage", migrateTo)
		}
		return nil
	},
}

func openBackend(c *config.Config, backend string) (storage.KV, error) {
	cc := *c
	cc.Backend = backend
	kv, err := cc.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", backend, err)
	}
	return kv, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source backend (default: configured backend)")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "write into a non-empty destination")
	migrateCmd.Flags().BoolVar(&migrateSwitch, "switch", false, "use the destination backend afterwards")
	rootCmd.AddCommand(migrateCmd)
}

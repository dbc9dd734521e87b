// ABOUTME: CLI commands for one-off medications logged by name.
// ABOUTME: Supports add, list, and removal by full id or unique prefix.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/anchor/internal/display"
	"github.com/harperreed/anchor/internal/models"
	"github.com/harperreed/anchor/internal/tracker"
	"github.com/spf13/cobra"
)

var extraAt string

var extraCmd = &cobra.Command{
	Use:     "extra",
	Aliases: []string{"x"},
	Short:   "Log one-off medications",
	Long: `Log medications outside the standing list, such as a painkiller or
an as-needed dose.

COMMANDS:

  add    Log an extra medication
  list   Show extra medications for a day
  rm     Remove an extra medication by id or id prefix`,
}

var extraAddCmd = &cobra.Command{
	Use:   "add <name> [dosage]",
	Short: "Log an extra medication",
	Long: `Log an extra medication by name with an optional free-text dosage.
The time defaults to now; use --at to backfill.

EXAMPLES:

  anchor extra add Ibuprofen 400mg
  anchor extra add "Hydroxyzine" 25mg --at 22:15`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate("")
		if err != nil {
			return err
		}
		var at time.Time
		if extraAt != "" {
			if at, err = models.ParseClock(date, extraAt); err != nil {
				return err
			}
		}
		dosage := ""
		if len(args) > 1 {
			dosage = args[1]
		}
		med, err := tr.AddExtraMed(cmd.Context(), date, args[0], dosage, at)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", args[0], err)
		}
		// print the store id, not the temporary one
		tr.Flush()
		med.ID = tr.ResolveExtraID(med.ID)

		color.Green("✓ Added %s", strings.TrimSpace(med.Name+" "+med.Dosage))
		fmt.Printf("  %s %s\n", faint.Sprint(med.ID), display.FormatTime(&med.TakenAt))
		return nil
	},
}

var extraListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show extra medications for a day",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate("")
		if err != nil {
			return err
		}
		if _, err := tr.Load(cmd.Context(), date); err != nil {
			return err
		}
		extras := tr.ExtraMeds(date)
		if len(extras) == 0 {
			fmt.Println("No extra medications.")
			return nil
		}
		printExtras(extras)
		return nil
	},
}

var extraRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "del"},
	Short:   "Remove an extra medication",
	Long: `Remove an extra medication by its id or a unique prefix of it.
Ids are shown by 'anchor extra list'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate("")
		if err != nil {
			return err
		}
		if _, err := tr.Load(cmd.Context(), date); err != nil {
			return err
		}
		med, err := findExtra(tr.ExtraMeds(date), args[0])
		if err != nil {
			return err
		}
		if err := tr.RemoveExtraMed(cmd.Context(), date, med.ID); err != nil {
			return fmt.Errorf("failed to remove %s: %w", med.Name, err)
		}
		color.Yellow("✗ Removed %s", strings.TrimSpace(med.Name+" "+med.Dosage))
		return nil
	},
}

// findExtra matches idOrPrefix against the day's extra meds.
func findExtra(extras []models.ExtraMed, idOrPrefix string) (models.ExtraMed, error) {
	var matches []models.ExtraMed
	for _, m := range extras {
		if m.ID == idOrPrefix {
			return m, nil
		}
		if strings.HasPrefix(m.ID, idOrPrefix) {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return models.ExtraMed{}, fmt.Errorf("%w: %s", tracker.ErrExtraMedNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	}
	return models.ExtraMed{}, fmt.Errorf("id prefix %q matches %d extra medications", idOrPrefix, len(matches))
}

func init() {
	extraAddCmd.Flags().StringVar(&extraAt, "at", "", "time taken (HH:MM, 3:04pm)")

	extraCmd.AddCommand(extraAddCmd)
	extraCmd.AddCommand(extraListCmd)
	extraCmd.AddCommand(extraRmCmd)
	rootCmd.AddCommand(extraCmd)
}

// ABOUTME: CLI commands for standing medication doses and the evening batch.
// ABOUTME: take toggles a dose; dose edits its time or amount; evening records the batch.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/anchor/internal/display"
	"github.com/harperreed/anchor/internal/models"
	"github.com/spf13/cobra"
)

var takeCmd = &cobra.Command{
	Use:   "take <medication> [dose]",
	Short: "Toggle whether a medication dose was taken",
	Long: `Mark a standing medication dose as taken, or unmark it if it already is.
The dose number defaults to 1; daytime medications taken twice a day
have doses 1 and 2.

Marking a dose records the current time. Unmarking clears the time but
keeps any adjusted dosage.

EXAMPLES:

  anchor take propranolol        # dose 1
  anchor take xanax-xr 2         # second dose
  anchor take lithium --date yesterday`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, med, dose, err := doseArgs(args)
		if err != nil {
			return err
		}
		l, err := tr.ToggleDose(cmd.Context(), date, med.ID, dose)
		if err != nil {
			return fmt.Errorf("failed to toggle %s: %w", med.ID, err)
		}

		if l.Taken {
			color.Green("✓ %s dose %d taken", med.Name, dose)
			fmt.Printf("  %s %s\n", faint.Sprint(date), display.FormatTime(l.TakenAt))
		} else {
			color.Yellow("✗ %s dose %d not taken", med.Name, dose)
		}
		return nil
	},
}

var doseCmd = &cobra.Command{
	Use:   "dose",
	Short: "Edit the time or amount of a logged dose",
	Long: `Edit a dose log without toggling it.

COMMANDS:

  time     Set when the dose was taken
  amount   Set the dosage actually taken (adjustable medications only)`,
}

var doseTimeCmd = &cobra.Command{
	Use:   "time <medication> <dose> <time>",
	Short: "Set when a dose was taken",
	Long: `Set the time a dose was taken. Accepts 24-hour (08:30), 12-hour
(8:30am, 8pm), or a full RFC 3339 timestamp. The taken state is kept.

EXAMPLES:

  anchor dose time propranolol 1 08:30
  anchor dose time xanax-xr 2 "3:15 pm"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, med, dose, err := doseArgs(args[:2])
		if err != nil {
			return err
		}
		at, err := models.ParseClock(date, args[2])
		if err != nil {
			return err
		}
		if _, err := tr.UpdateDoseTime(cmd.Context(), date, med.ID, dose, at); err != nil {
			return fmt.Errorf("failed to update %s: %w", med.ID, err)
		}
		color.Green("✓ %s dose %d at %s", med.Name, dose, display.FormatTime(&at))
		return nil
	},
}

var doseAmountCmd = &cobra.Command{
	Use:   "amount <medication> <dose> <value>",
	Short: "Set the dosage actually taken",
	Long: `Record the dosage actually taken for a medication whose dosage is
adjustable (e.g. lithium, rexulti). The value is in the medication's unit.

EXAMPLES:

  anchor dose amount lithium 1 900`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, med, dose, err := doseArgs(args[:2])
		if err != nil {
			return err
		}
		if !med.DosageAdjustable {
			return fmt.Errorf("%s does not have an adjustable dosage", med.Name)
		}
		value, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid dosage: %s", args[2])
		}
		if _, err := tr.UpdateDosage(cmd.Context(), date, med.ID, dose, value); err != nil {
			return fmt.Errorf("failed to update %s: %w", med.ID, err)
		}
		color.Green("✓ %s dose %d: %s", med.Name, dose, display.FormatDosage(&value, med.DosageUnit))
		return nil
	},
}

var eveningCmd = &cobra.Command{
	Use:   "evening [time]",
	Short: "Record when the evening medications were taken",
	Long: `Record the shared time the evening medications were taken. Without a
time argument the current time is used.

EXAMPLES:

  anchor evening
  anchor evening 21:30
  anchor evening 9pm --date yesterday`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate("")
		if err != nil {
			return err
		}
		at := tr.Now()
		if len(args) == 1 {
			if at, err = models.ParseClock(date, args[0]); err != nil {
				return err
			}
		}
		if err := tr.SetEveningTime(cmd.Context(), date, at); err != nil {
			return fmt.Errorf("failed to set evening time: %w", err)
		}
		color.Green("✓ Evening medications taken at %s", display.FormatTime(&at))
		return nil
	},
}

// doseArgs resolves the date flag plus <medication> [dose] arguments.
func doseArgs(args []string) (models.DateKey, models.Medication, int, error) {
	date, err := resolveDate("")
	if err != nil {
		return "", models.Medication{}, 0, err
	}
	dose := 1
	if len(args) > 1 {
		if dose, err = strconv.Atoi(args[1]); err != nil {
			return "", models.Medication{}, 0, fmt.Errorf("invalid dose number: %s", args[1])
		}
	}
	med, err := meds.Dose(args[0], dose)
	if err != nil {
		return "", models.Medication{}, 0, err
	}
	return date, med, dose, nil
}

func init() {
	doseCmd.AddCommand(doseTimeCmd)
	doseCmd.AddCommand(doseAmountCmd)

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(doseCmd)
	rootCmd.AddCommand(eveningCmd)
}

// ABOUTME: CLI commands for viewing and answering today's questions.
// ABOUTME: today shows progress; log records one activity value.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/anchor/internal/display"
	"github.com/harperreed/anchor/internal/history"
	"github.com/harperreed/anchor/internal/models"
	"github.com/spf13/cobra"
)

var todayCmd = &cobra.Command{
	Use:     "today",
	Aliases: []string{"t", "status"},
	Short:   "Show the day's answers, progress, and medications",
	Long: `Show everything logged for a day (today by default): each question
with its answer or a gap marker, the completion progress, every standing
medication dose slot, the evening batch time, and any extra medications.

EXAMPLES:

  anchor today
  anchor today --date yesterday`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate("")
		if err != nil {
			return err
		}
		day, err := tr.Load(cmd.Context(), date)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", date, err)
		}
		cfg := meds.Current()
		view := history.Build(day, tr.Activities(), cfg)
		printToday(date, view, history.ComputeProgress(tr.Activities(), day.Entries), cfg)
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:     "log <activity> <value>",
	Aliases: []string{"set"},
	Short:   "Answer one daily question",
	Long: `Record the answer to one daily question. The value is read according to
the question's type:

  checkbox   yes/no, y/n, true/false, 1/0, done
  rating     a number of stars, e.g. 4
  number     a number, e.g. 7.5
  scale      a number on the scale, e.g. -2 for mood
  text       any text; quote it if it has spaces

Values outside the suggested range are stored as given. Put flags
before the activity so negative values are not read as flags.

ACTIVITIES:

  sleep-quality, sleep-hours, exercise, stretch, weather, sunshine,
  mood, paranoia, scrambled-brains, journaling, notes

EXAMPLES:

  anchor log mood -2
  anchor log sleep-hours 7.5
  anchor log stretch yes
  anchor log exercise "30 min walk"
  anchor log --date yesterday journaling yes`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate("")
		if err != nil {
			return err
		}
		act, err := models.FindActivity(tr.Activities(), args[0])
		if err != nil {
			return err
		}
		entry, err := tr.SetEntryText(cmd.Context(), date, act.ID, args[1])
		if err != nil {
			return fmt.Errorf("failed to log %s: %w", act.ID, err)
		}

		color.Green("✓ Logged %s", act.Name)
		fmt.Printf("  %s %s\n", faint.Sprint(date), display.FormatValue(act, entry.Value))
		return nil
	},
}

var (
	resetYes bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete everything logged on a day",
	Long: `Delete every answer, dose log, evening time, and extra medication
recorded on a day (today by default). Asks for confirmation unless --yes.

This cannot be undone.

EXAMPLES:

  anchor reset
  anchor reset --date 2025-01-02 --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate("")
		if err != nil {
			return err
		}
		if !resetYes {
			fmt.Printf("Delete everything logged on %s? [y/N]: ", display.FormatDate(date))
			var confirm string
			_, _ = fmt.Scanln(&confirm)
			if confirm != "y" && confirm != "Y" {
				fmt.Println("Canceled.")
				return nil
			}
		}
		if err := tr.ResetDay(cmd.Context(), date); err != nil {
			return fmt.Errorf("failed to reset %s: %w", date, err)
		}
		color.Yellow("✗ Cleared %s", date)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dateFlag, "date", "d", "", "day to act on (YYYY-MM-DD, today, yesterday)")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip confirmation")
	logCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(resetCmd)
}

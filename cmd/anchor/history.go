// ABOUTME: CLI commands for looking back at past days.
// ABOUTME: history reconstructs one day; calendar marks which days have data.
package main

import (
	"fmt"

	"github.com/harperreed/anchor/internal/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:     "history [date]",
	Aliases: []string{"h"},
	Short:   "Show a past day with gaps marked",
	Long: `Show everything recorded on a past day. Every question is listed, with
unanswered ones marked as missing. Only medications that were logged
appear. Defaults to yesterday.

EXAMPLES:

  anchor history
  anchor history 2025-01-02
  anchor history today`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := history.DefaultDate(tr.Now())
		if len(args) == 1 || dateFlag != "" {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			var err error
			if date, err = resolveDate(arg); err != nil {
				return err
			}
		}
		if date.IsFuture(tr.Now()) {
			return fmt.Errorf("%s is in the future", date)
		}
		view, err := newReconstructor().Day(cmd.Context(), date)
		if err != nil {
			return err
		}
		printHistory(view)
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:     "calendar [YYYY-MM]",
	Aliases: []string{"cal"},
	Short:   "Show which days of a month have data",
	Long: `Show a month grid. Days with any answer or medication log are
highlighted; future days are dimmed. Defaults to the current month.

EXAMPLES:

  anchor calendar
  anchor calendar 2025-01`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		now := tr.Now()
		year, month := now.Year(), now.Month()
		if len(args) == 1 {
			var err error
			if year, month, err = history.ParseMonth(args[0]); err != nil {
				return err
			}
		}
		summary, err := newReconstructor().Month(cmd.Context(), year, month, now)
		if err != nil {
			return err
		}
		printCalendar(summary)
		return nil
	},
}

func newReconstructor() *history.Reconstructor {
	return &history.Reconstructor{
		Source:      tr,
		Activities:  tr.Activities(),
		Medications: meds,
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(calendarCmd)
}

// ABOUTME: CLI commands for exporting and importing tracked days.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/anchor/internal/models"
	"github.com/harperreed/anchor/internal/remote"
	"github.com/harperreed/anchor/internal/storage"
	"github.com/spf13/cobra"
)

// exportEpoch is the default start of the export range.
const exportEpoch models.DateKey = "2000-01-01"

var (
	exportOutput string
	exportFrom   string
	exportTo     string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export tracked days",
	Long: `Export every day with data in a date range.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   One table per day (for sharing with a clinician)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --from         First day to include (YYYY-MM-DD, default: everything)
  --to           Last day to include (YYYY-MM-DD, default: today)

EXAMPLES:

  anchor export json -o backup.json
  anchor export yaml
  anchor export markdown --from 2025-01-01 --to 2025-01-31`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]
		switch format {
		case "json", "yaml", "markdown":
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		from, to, err := exportRange()
		if err != nil {
			return err
		}
		data, err := storage.GetAllData(cmd.Context(), tr, from, to)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		var out []byte
		switch format {
		case "json":
			out, err = storage.ExportJSON(data)
		case "yaml":
			out, err = storage.ExportYAML(data)
		case "markdown":
			out = []byte(storage.ExportMarkdown(data, tr.Activities(), meds.Current()))
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, out, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported %d day(s) to %s", len(data.Days), exportOutput)
			return nil
		}
		fmt.Println(string(out))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tracked days from a JSON export",
	Long: `Import days from a file written by 'anchor export json'.

Each imported day replaces what is stored locally for that date. With a
remote store configured, records are upserted there instead and extra
medications are inserted as new rows.

EXAMPLES:

  anchor import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		data, err := storage.ParseExportJSON(raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		for _, day := range data.Days {
			if err := importDay(cmd.Context(), day); err != nil {
				return fmt.Errorf("import %s: %w", day.Date, err)
			}
		}
		color.Green("✓ Imported %d day(s) from %s", len(data.Days), args[0])
		return nil
	},
}

func exportRange() (models.DateKey, models.DateKey, error) {
	from, to := exportEpoch, tr.Today()
	var err error
	if exportFrom != "" {
		if from, err = models.ParseDateKey(exportFrom); err != nil {
			return "", "", err
		}
	}
	if exportTo != "" {
		if to, err = models.ParseDateKey(exportTo); err != nil {
			return "", "", err
		}
	}
	if to.Before(from) {
		return "", "", fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return from, to, nil
}

func importDay(ctx context.Context, day *models.DayRecords) error {
	if remoteStore == nil {
		return storage.NewDays(kvStore).Save(day)
	}

	user := cfg.GetUserID()
	for _, e := range day.SortedEntries() {
		if err := remoteStore.UpsertEntry(ctx, user, e); err != nil {
			return err
		}
	}
	for _, l := range day.DoseLogs {
		if err := remoteStore.UpsertDoseLog(ctx, user, day.Date, l); err != nil {
			return err
		}
	}
	if day.EveningTime != nil {
		if err := remoteStore.UpsertEveningTime(ctx, user, day.Date, *day.EveningTime); err != nil {
			return err
		}
	}
	for _, m := range day.ExtraMeds {
		extra := remote.NewExtraMed{Name: m.Name, Dosage: m.Dosage, TakenAt: m.TakenAt}
		if _, err := remoteStore.InsertExtraMed(ctx, user, day.Date, extra); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "first day to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "last day to include (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

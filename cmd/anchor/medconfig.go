// ABOUTME: CLI commands for the standing medication configuration.
// ABOUTME: Lists the config and round-trips it through YAML for editing.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/anchor/internal/display"
	"github.com/harperreed/anchor/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var medsOutput string

var medsCmd = &cobra.Command{
	Use:     "meds",
	Aliases: []string{"medications"},
	Short:   "Show the standing medication list",
	Long: `Show the standing medications, split into daytime (several doses a day)
and evening (one shared batch time).

To change the list, export it to YAML, edit it, and import it back:

  anchor meds export -o meds.yaml
  $EDITOR meds.yaml
  anchor meds import meds.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := meds.Current()
		printMedGroup("Daytime", cfg.Daytime)
		fmt.Println()
		printMedGroup("Evening", cfg.Evening)
		return nil
	},
}

var medsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the medication list as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(meds.Current())
		if err != nil {
			return fmt.Errorf("encode medications: %w", err)
		}
		if medsOutput == "" {
			fmt.Print(string(data))
			return nil
		}
		if err := os.WriteFile(medsOutput, data, 0600); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		color.Green("✓ Exported to %s", medsOutput)
		return nil
	},
}

var medsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the medication list from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		var cfg models.MedicationConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		if err := meds.Save(cfg); err != nil {
			return fmt.Errorf("failed to save medications: %w", err)
		}
		color.Green("✓ Saved %d daytime and %d evening medications", len(cfg.Daytime), len(cfg.Evening))
		return nil
	},
}

func printMedGroup(title string, group []models.Medication) {
	fmt.Println(bold.Sprint(title))
	if len(group) == 0 {
		faint.Println("  (none)")
		return
	}
	for _, m := range group {
		detail := display.FormatDosage(m.DosageValue, m.DosageUnit)
		if detail == "" {
			detail = m.Dosage
		}
		if m.Doses() > 1 {
			detail += fmt.Sprintf(" × %d", m.Doses())
		}
		if m.DosageAdjustable {
			detail += " (adjustable)"
		}
		fmt.Printf("  %s %s %s\n", padRight(m.ID, 16), padRight(m.Name, 16), faint.Sprint(detail))
	}
}

func init() {
	medsExportCmd.Flags().StringVarP(&medsOutput, "output", "o", "", "output file (default: stdout)")

	medsCmd.AddCommand(medsExportCmd)
	medsCmd.AddCommand(medsImportCmd)
	rootCmd.AddCommand(medsCmd)
}

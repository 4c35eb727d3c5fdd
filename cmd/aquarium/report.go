package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/aquarium/pkg/report"
)

var xlsxPath string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reports across all tanks",
}

var summaryReportCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize tanks, fish health and maintenance",
	Long: `Print totals, per-tank fish health and maintenance counts, and the activity breakdown.

With --xlsx the same summary is also written as a spreadsheet.

Example:
  aquarium report summary --xlsx aquarium.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		summary, err := s.keeper.Summary(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to build summary: %w", err)
		}
		if err := report.WriteText(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
		if xlsxPath == "" {
			return nil
		}

		f, err := os.Create(xlsxPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", xlsxPath, err)
		}
		if err := report.WriteXLSX(f, summary); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", xlsxPath, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("\nSpreadsheet written to %s\n", xlsxPath)
		return nil
	},
}

func initReportCmd() {
	summaryReportCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the summary to this XLSX file")
	reportCmd.AddCommand(summaryReportCmd)
}

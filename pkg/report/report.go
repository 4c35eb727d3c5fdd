// Package report renders a tanks.Summary as plain text or as an XLSX workbook.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/unowned-ai/aquarium/pkg/tanks"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "summary"
	tanksSheet      = "tanks"
	activitiesSheet = "activities"

	dateLayout = "2006-01-02 15:04"
)

func lastMaintenance(ts tanks.TankSummary) string {
	if ts.LastMaintenance == nil {
		return "never"
	}
	return ts.LastMaintenance.Format(dateLayout)
}

// WriteText prints the summary in the layout used by the CLI.
func WriteText(w io.Writer, s tanks.Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Tanks: %d | Gallons: %g | Fish: %d\n", s.TotalTanks, s.TotalGallons, s.TotalFish)
	for _, ts := range s.Tanks {
		fmt.Fprintf(&b, "\n%s\n", ts.Tank)
		health := make([]string, 0, len(tanks.HealthStatuses))
		for _, h := range tanks.HealthStatuses {
			health = append(health, fmt.Sprintf("%s %s %d", h.Icon(), h, ts.Health[h]))
		}
		fmt.Fprintf(&b, "  Fish: %d (%s)\n", ts.FishCount, strings.Join(health, ", "))
		fmt.Fprintf(&b, "  Maintenance: %d, last %s\n", ts.MaintenanceCount, lastMaintenance(ts))
	}
	b.WriteString("\nActivities:\n")
	for _, a := range tanks.ActivityTypes {
		fmt.Fprintf(&b, "  %-16s %d\n", a.DisplayName(), s.Activities[a])
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// BuildSummaryXLSX renders the summary as a workbook with a totals sheet, one row
// per tank and the activity breakdown.
func BuildSummaryXLSX(s tanks.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	for _, name := range []string{tanksSheet, activitiesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue(summarySheet, "A1", "Aquarium Summary")
	_ = f.SetCellValue(summarySheet, "A3", "Tanks")
	_ = f.SetCellValue(summarySheet, "B3", s.TotalTanks)
	_ = f.SetCellValue(summarySheet, "A4", "Gallons")
	_ = f.SetCellValue(summarySheet, "B4", s.TotalGallons)
	_ = f.SetCellValue(summarySheet, "A5", "Fish")
	_ = f.SetCellValue(summarySheet, "B5", s.TotalFish)

	header := []any{"ID", "Name", "Type", "Gallons", "Location", "Fish"}
	for _, h := range tanks.HealthStatuses {
		header = append(header, string(h))
	}
	header = append(header, "Maintenance", "Last Maintenance")
	if err := f.SetSheetRow(tanksSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, ts := range s.Tanks {
		row := []any{ts.Tank.ID.String(), ts.Tank.Name, string(ts.Tank.TankType), ts.Tank.SizeGallons, ts.Tank.Location, ts.FishCount}
		for _, h := range tanks.HealthStatuses {
			row = append(row, ts.Health[h])
		}
		row = append(row, ts.MaintenanceCount, lastMaintenance(ts))
		if err := f.SetSheetRow(tanksSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue(activitiesSheet, "A1", "Activity")
	_ = f.SetCellValue(activitiesSheet, "B1", "Count")
	for i, a := range tanks.ActivityTypes {
		row := i + 2
		_ = f.SetCellValue(activitiesSheet, fmt.Sprintf("A%d", row), a.DisplayName())
		_ = f.SetCellValue(activitiesSheet, fmt.Sprintf("B%d", row), s.Activities[a])
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteXLSX writes the workbook built by BuildSummaryXLSX to w.
func WriteXLSX(w io.Writer, s tanks.Summary) error {
	data, err := BuildSummaryXLSX(s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/bridge-judging/models"
	"github.com/xuri/excelize/v2"
)

const (
	ExportSheetName   = "Competition Results"
	ExportFileName    = "bridge-building-competition-results.xlsx"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportTimeLayout = "15:04:05"
	exportMissing    = "-"
)

var ExportColumns = []string{
	"Team Number",
	"Team Name",
	"Category",
	"School",
	"Status",
	"Arrival Time",
	"Check-in Time",
	"Total Score",
	"Rank",
}

// ExportRecord is one rendered row, in ExportColumns order.
func ExportRecord(row models.ReportRow, loc *time.Location) []interface{} {
	t := row.Team

	category := strings.ToUpper(string(t.Category))
	if category == "" {
		category = "N/A"
	}
	status := string(t.Status)
	if status == "" {
		status = string(models.TeamStatusRegistered)
	}

	var total, rank interface{} = exportMissing, exportMissing
	if row.Score != nil {
		if row.Score.TotalScore != 0 {
			total = row.Score.TotalScore
		}
		if row.Score.Rank != nil {
			rank = *row.Score.Rank
		}
	}

	return []interface{}{
		t.TeamNumber,
		t.TeamName,
		category,
		t.SchoolName,
		status,
		formatExportTime(t.ArrivalTime, loc),
		formatExportTime(t.CheckInTime, loc),
		total,
		rank,
	}
}

func formatExportTime(ts *time.Time, loc *time.Location) string {
	if ts == nil {
		return exportMissing
	}
	return ts.In(loc).Format(exportTimeLayout)
}

// RenderExport writes rows to a single-sheet workbook.
func RenderExport(rows []models.ReportRow, loc *time.Location) (*bytes.Buffer, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		record := ExportRecord(row, loc)
		if err := f.SetSheetRow(ExportSheetName, cell, &record); err != nil {
			return nil, fmt.Errorf("failed to write row for team %s: %w", row.Team.TeamNumber, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

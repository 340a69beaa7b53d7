// Package report exports validation run history to spreadsheet files.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/foundrygate/gateway-validator/internal/models"
)

const sheetName = "Validation Runs"

var header = []any{
	"Run ID", "Connection", "Variant", "Deployment", "Status", "Duration (ms)", "Finished At",
}

// WriteExcel writes the given runs to an .xlsx file at path, newest first
// in the order provided.
func WriteExcel(path string, runs []models.ValidationRun) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, run := range runs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell: %w", err)
		}
		row := []any{
			run.ID.String(),
			run.ConnectionName,
			string(run.Variant),
			run.DeploymentName,
			string(run.Status),
			run.Duration().Milliseconds(),
			run.FinishedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

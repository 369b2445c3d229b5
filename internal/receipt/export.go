package receipt

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Receipt"

// exportXLSX writes one row per item followed by the total row
func exportXLSX(scan *Scan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	// #,##0.## keeps IDR amounts readable
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr("#,##0.##")})
	if err != nil {
		return nil, fmt.Errorf("creating amount style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &[]any{"Item", "Count", "Price"}); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", "C1", bold); err != nil {
		return nil, fmt.Errorf("styling header: %w", err)
	}

	row := 2
	for _, it := range scan.Items {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &[]any{it.Name, it.Count, it.TotalPrice}); err != nil {
			return nil, fmt.Errorf("writing item row %d: %w", row, err)
		}
		row++
	}

	totalLabel, _ := excelize.CoordinatesToCellName(1, row)
	totalCell, _ := excelize.CoordinatesToCellName(3, row)
	if err := f.SetCellValue(exportSheet, totalLabel, "Total"); err != nil {
		return nil, fmt.Errorf("writing total label: %w", err)
	}
	if err := f.SetCellValue(exportSheet, totalCell, scan.Total); err != nil {
		return nil, fmt.Errorf("writing total: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, totalLabel, totalLabel, bold); err != nil {
		return nil, fmt.Errorf("styling total: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "C2", totalCell, amount); err != nil {
		return nil, fmt.Errorf("styling amounts: %w", err)
	}
	if err := f.SetColWidth(exportSheet, "A", "A", 40); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func strPtr(s string) *string { return &s }

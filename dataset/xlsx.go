package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes the whole dataset into one workbook for manual review:
// one sheet per table, with a partition column prepended so reviewers can
// filter without juggling files.
func (e *Exporter) WriteXLSX(a *Assembled) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "Invoices", invoiceHeader, func(p PartitionSet) [][]string {
		return invoiceRows(p.Scenarios, e.now)
	}, a); err != nil {
		return err
	}
	if err := writeSheet(f, "Payments", paymentHeader, func(p PartitionSet) [][]string {
		return paymentRows(p.Scenarios)
	}, a); err != nil {
		return err
	}
	if err := writeSheet(f, "GroundTruth", labelHeader, func(p PartitionSet) [][]string {
		return labelRows(p.Scenarios)
	}, a); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	path := filepath.Join(e.dir, "dataset.xlsx")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, header []string, rowsOf func(PartitionSet) [][]string, a *Assembled) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}

	cells := append([]string{"partition"}, header...)
	if err := writeRow(f, name, 1, cells); err != nil {
		return err
	}
	rowIdx := 2
	for _, p := range a.Partitions {
		for _, row := range rowsOf(p) {
			if err := writeRow(f, name, rowIdx, append([]string{string(p.Name)}, row...)); err != nil {
				return err
			}
			rowIdx++
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	return nil
}

package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"induction-torque/internal/motor"
)

// SheetName is the worksheet the table is written to.
const SheetName = "Table Data"

// WriteWorkbook writes rows as an xlsx workbook: one header row with the
// table column names, then one row per torque row.
func WriteWorkbook(w io.Writer, rows []motor.TorqueRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]any, len(motor.TableColumns))
	for i, c := range motor.TableColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := r.Values()
		if err := f.SetSheetRow(SheetName, cell, &vals); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

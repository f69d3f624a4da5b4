package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Movimientos"

var xlsxHeaders = []string{"Fecha", "Evento", "Tipo", "Categoría", "Monto", "Descripción"}

// WriteXLSX renders the movement table as a workbook with a single sheet.
// Amounts are written as numbers so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, in Input) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, h := range xlsxHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, h)
	}

	for idx, e := range in.Entries {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.Date.String())
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.Event)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), kindLabel(e.Kind))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), e.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), e.Amount.Float64())
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), e.Description)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 25)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 18)
	f.SetColWidth(sheetName, "E", "E", 12)
	f.SetColWidth(sheetName, "F", "F", 35)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

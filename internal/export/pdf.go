package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

var pdfColumns = []struct {
	title string
	width float64
}{
	{"#", 8},
	{"Fecha", 22},
	{"Evento", 38},
	{"Tipo", 18},
	{"Categoría", 30},
	{"Monto", 22},
	{"Descripción", 52},
}

// WritePDF renders the movement table with a heading, generation date, and
// totals line above it.
func WritePDF(w io.Writer, in Input) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; translate the UTF-8 strings we render
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(in.Organization), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Control de ingresos y egresos"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Fecha de generación: "+in.GeneratedAt.Format("2006-01-02")), "", 1, "L", false, 0, "")
	totalsLine := fmt.Sprintf("Ingresos: $%s   |   Egresos: $%s   |   Saldo: $%s",
		in.Totals.Income, in.Totals.Expense, in.Totals.Balance)
	pdf.CellFormat(0, 6, tr(totalsLine), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 6, tr(col.title), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, e := range in.Entries {
		cells := []string{
			fmt.Sprintf("%d", i+1),
			e.Date.String(),
			e.Event,
			kindLabel(e.Kind),
			e.Category,
			e.Amount.String(),
			e.Description,
		}
		for j, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, tr(cells[j]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV renders the movement table as UTF-8 CSV. The leading BOM keeps
// Excel from misreading accented category names.
func WriteCSV(w io.Writer, in Input) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Fecha", "Evento", "Tipo", "Categoría", "Monto", "Descripción"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range in.Entries {
		record := []string{
			e.Date.String(),
			e.Event,
			kindLabel(e.Kind),
			e.Category,
			e.Amount.String(),
			e.Description,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
